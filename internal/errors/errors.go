package errors

import (
	"fmt"
	"net/http"
	"strings"

	"gocaixa/internal/domain"
)

// AppError é a interface central para todos os erros customizados da estação.
// Ela permite que o código externo (Handler, CLI) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada
// (ex.: depósito não selecionado, ledger vazio na finalização).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }                   // Não encapsula erro subjacente

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa um código lido ou busca sem variação correspondente.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito de estado da sessão (ex.: finalização em andamento).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// InsufficientStockError é a falha da pré-checagem consultiva de saldo.
type InsufficientStockError struct {
	Code      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para %s: disponível %d, solicitado %d (faltam %d).",
		e.Code, e.Available, e.Requested, e.Shortfall())
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InsufficientStockError) Unwrap() error    { return nil }

// Shortfall é a quantidade que falta para atender o pedido.
func (e *InsufficientStockError) Shortfall() int {
	if e.Available < 0 {
		return e.Requested
	}
	return e.Requested - e.Available
}

// NewInsufficientStockError cria o erro com o saldo conhecido e o total solicitado.
func NewInsufficientStockError(code string, available, requested int) AppError {
	return &InsufficientStockError{Code: code, Available: available, Requested: requested}
}

// MultipleMatchesError indica que uma busca textual retornou mais de uma variação.
// A escolha é feita pelo operador; a sessão aceita apenas um ID resolvido por adição.
type MultipleMatchesError struct {
	Query      string
	Candidates []domain.Variation
}

func (e *MultipleMatchesError) Error() string {
	return fmt.Sprintf("A busca '%s' retornou %d variações. Selecione uma.", e.Query, len(e.Candidates))
}
func (e *MultipleMatchesError) Category() string { return "MULTIPLE_MATCHES" }
func (e *MultipleMatchesError) HTTPStatus() int  { return http.StatusMultipleChoices } // 300
func (e *MultipleMatchesError) Unwrap() error    { return nil }

// NewMultipleMatchesError cria o erro de múltiplos resultados.
func NewMultipleMatchesError(query string, candidates []domain.Variation) AppError {
	return &MultipleMatchesError{Query: query, Candidates: candidates}
}

// SubmitRejectedError carrega todos os motivos devolvidos pelo backend ao recusar um lote.
type SubmitRejectedError struct {
	Status int
	Report domain.ErrorReport
}

func (e *SubmitRejectedError) Error() string {
	return fmt.Sprintf("Lote recusado pelo backend: %s", strings.Join(e.Report.Messages, "; "))
}
func (e *SubmitRejectedError) Category() string { return "SUBMIT_REJECTED" }
func (e *SubmitRejectedError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *SubmitRejectedError) Unwrap() error    { return nil }

// NewSubmitRejectedError cria o erro de recusa com o relatório normalizado.
func NewSubmitRejectedError(status int, report domain.ErrorReport) AppError {
	return &SubmitRejectedError{Status: status, Report: report}
}

// UnauthorizedError representa credenciais ausentes, inválidas ou expiradas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autorização.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// NetworkError representa falhas de comunicação com o backend (timeout, conexão, 5xx).
type NetworkError struct {
	Msg string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Falha de comunicação: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("Falha de comunicação: %s", e.Msg)
}
func (e *NetworkError) Category() string { return "NETWORK_FAILURE" }
func (e *NetworkError) HTTPStatus() int  { return http.StatusBadGateway } // 502
func (e *NetworkError) Unwrap() error    { return e.Err }

// NewNetworkError cria um erro de comunicação com o backend.
func NewNetworkError(msg string, err error) AppError {
	return &NetworkError{Msg: msg, Err: err}
}

// InternalError representa falhas inesperadas na estação (espelho, serialização).
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro interno.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}

// ToErrorResponse monta o corpo de erro padronizado, incluindo mensagens do backend
// e candidatos de busca quando o erro os carrega.
func ToErrorResponse(err error) domain.ErrorResponse {
	status, category, message := MapToHTTPStatus(err)
	resp := domain.ErrorResponse{Code: status, Category: category, Message: message}
	switch e := err.(type) {
	case *SubmitRejectedError:
		resp.Messages = e.Report.Messages
	case *MultipleMatchesError:
		resp.Candidates = e.Candidates
	}
	return resp
}
