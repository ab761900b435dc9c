package caixa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/report"
	"gocaixa/internal/scanner"
	"gocaixa/internal/service/caixaservice"
)

// CaixaService define o contrato que o Handler espera da sessão de leitura.
type CaixaService interface {
	Scan(ctx context.Context, raw string, source scanner.Source) (domain.ScanResult, error)
	BulkPaste(ctx context.Context, text string) (domain.BulkResult, error)
	Search(ctx context.Context, query string) ([]domain.Variation, error)
	AddCandidate(ctx context.Context, variationID string, quantity int) (domain.ScanResult, error)
	AlterQuantity(variationID string, delta int) error
	SetQuantity(variationID string, value int) error
	Remove(variationID string) error
	ClearAll() error
	Undo() (bool, error)
	Finalize(ctx context.Context) (domain.BatchResult, error)
	UpdateSettings(p domain.SettingsPatch) (domain.SessionSettings, error)
	Dispatch(ctx context.Context, action scanner.Action) (caixaservice.ShortcutResult, error)
	View() domain.SessionView
	Export() ([]byte, error)
}

// Handler agrupa os handlers HTTP da estação de leitura.
type Handler struct {
	Service CaixaService
	Keymap  *scanner.Keymap
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CaixaService, keymap *scanner.Keymap, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Keymap:  keymap,
		Logger:  log,
	}
}

// Register associa as rotas /v1/caixa ao mux. Métodos fora do padrão recebem 405 do próprio ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/caixa", h.GetSessionHandler)
	mux.HandleFunc("POST /v1/caixa/scan", h.ScanHandler)
	mux.HandleFunc("POST /v1/caixa/lote", h.BulkHandler)
	mux.HandleFunc("GET /v1/caixa/buscar", h.SearchHandler)
	mux.HandleFunc("POST /v1/caixa/candidatos/{id}", h.AddCandidateHandler)
	mux.HandleFunc("PATCH /v1/caixa/itens/{id}", h.PatchItemHandler)
	mux.HandleFunc("DELETE /v1/caixa/itens/{id}", h.DeleteItemHandler)
	mux.HandleFunc("POST /v1/caixa/desfazer", h.UndoHandler)
	mux.HandleFunc("POST /v1/caixa/limpar", h.ClearHandler)
	mux.HandleFunc("POST /v1/caixa/finalizar", h.FinalizeHandler)
	mux.HandleFunc("PUT /v1/caixa/configuracao", h.SettingsHandler)
	mux.HandleFunc("POST /v1/caixa/atalhos/{tecla}", h.ShortcutHandler)
	mux.HandleFunc("GET /v1/caixa/exportar", h.ExportHandler)
}

// Corpos de requisição.
type scanRequest struct {
	Code   string         `json:"codigo"`
	Source scanner.Source `json:"origem"`
}

type bulkRequest struct {
	Text string `json:"texto"`
}

type candidateRequest struct {
	Quantity int `json:"quantidade"`
}

type itemPatchRequest struct {
	Delta    *int `json:"delta"`
	Quantity *int `json:"quantidade"`
}

type undoResponse struct {
	Undone bool               `json:"desfeito"`
	View   domain.SessionView `json:"sessao"`
}

type finalizeResponse struct {
	Result domain.BatchResult `json:"resultado"`
	View   domain.SessionView `json:"sessao"`
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	resp := apperror.ToErrorResponse(err)
	if resp.Code >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", resp.Category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", resp.Code, resp.Category), map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return false
	}
	return true
}

// GetSessionHandler lida com GET /v1/caixa.
// @Summary Estado da sessão
// @Description Retorna itens pendentes, configuração, depósitos e estado da sessão.
// @Tags caixa
// @Produce json
// @Success 200 {object} domain.SessionView
// @Router /caixa [get]
func (h *Handler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	h.handleServiceResponse(w, r, h.Service.View(), nil, http.StatusOK)
}

// ScanHandler lida com POST /v1/caixa/scan.
// @Summary Registra uma leitura
// @Description Interpreta o token (10*COD, COD*10 ou COD), resolve no backend e adiciona ao lote.
// @Tags caixa
// @Accept json
// @Produce json
// @Param leitura body scanRequest true "Código lido"
// @Success 200 {object} domain.ScanResult
// @Failure 300 {object} domain.ErrorResponse "Mais de uma variação encontrada"
// @Failure 404 {object} domain.ErrorResponse "Código não encontrado"
// @Failure 422 {object} domain.ErrorResponse "Estoque insuficiente"
// @Failure 502 {object} domain.ErrorResponse "Falha de comunicação com o backend"
// @Router /caixa/scan [post]
func (h *Handler) ScanHandler(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.Service.Scan(r.Context(), req.Code, normalizeSource(req.Source))
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// BulkHandler lida com POST /v1/caixa/lote.
// @Summary Colagem em lote
// @Description Processa um código por linha; cada linha é independente.
// @Tags caixa
// @Accept json
// @Produce json
// @Param colagem body bulkRequest true "Texto colado"
// @Success 200 {object} domain.BulkResult
// @Failure 400 {object} domain.ErrorResponse
// @Router /caixa/lote [post]
func (h *Handler) BulkHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.Service.BulkPaste(r.Context(), req.Text)
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// SearchHandler lida com GET /v1/caixa/buscar?q=.
// @Summary Busca textual
// @Tags caixa
// @Produce json
// @Param q query string true "Termo de busca"
// @Success 200 {array} domain.Variation
// @Router /caixa/buscar [get]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Search(r.Context(), r.URL.Query().Get("q"))
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// AddCandidateHandler lida com POST /v1/caixa/candidatos/{id}.
// @Summary Adiciona um candidato da última busca
// @Tags caixa
// @Accept json
// @Produce json
// @Param id path string true "ID da variação"
// @Param quantidade body candidateRequest false "Quantidade (opcional)"
// @Success 200 {object} domain.ScanResult
// @Failure 404 {object} domain.ErrorResponse
// @Router /caixa/candidatos/{id} [post]
func (h *Handler) AddCandidateHandler(w http.ResponseWriter, r *http.Request) {
	var req candidateRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	res, err := h.Service.AddCandidate(r.Context(), r.PathValue("id"), req.Quantity)
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// PatchItemHandler lida com PATCH /v1/caixa/itens/{id}.
// @Summary Ajusta a quantidade de uma linha
// @Description {"delta": n} soma (remove a linha em ≤ 0); {"quantidade": n} define (mínimo 1).
// @Tags caixa
// @Accept json
// @Produce json
// @Param id path string true "ID da variação"
// @Param ajuste body itemPatchRequest true "delta ou quantidade"
// @Success 200 {object} domain.SessionView
// @Failure 404 {object} domain.ErrorResponse
// @Router /caixa/itens/{id} [patch]
func (h *Handler) PatchItemHandler(w http.ResponseWriter, r *http.Request) {
	var req itemPatchRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	var err error
	switch {
	case req.Delta != nil && req.Quantity != nil:
		err = apperror.NewValidationError("Informe delta ou quantidade, não ambos.")
	case req.Delta != nil:
		err = h.Service.AlterQuantity(id, *req.Delta)
	case req.Quantity != nil:
		err = h.Service.SetQuantity(id, *req.Quantity)
	default:
		err = apperror.NewValidationError("Informe delta ou quantidade.")
	}
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Service.View(), nil, http.StatusOK)
}

// DeleteItemHandler lida com DELETE /v1/caixa/itens/{id}.
// @Summary Remove uma linha
// @Tags caixa
// @Param id path string true "ID da variação"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Router /caixa/itens/{id} [delete]
func (h *Handler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Remove(r.PathValue("id"))
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// UndoHandler lida com POST /v1/caixa/desfazer.
// @Summary Desfaz a última leitura
// @Tags caixa
// @Produce json
// @Success 200 {object} undoResponse
// @Router /caixa/desfazer [post]
func (h *Handler) UndoHandler(w http.ResponseWriter, r *http.Request) {
	undone, err := h.Service.Undo()
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, undoResponse{Undone: undone, View: h.Service.View()}, nil, http.StatusOK)
}

// ClearHandler lida com POST /v1/caixa/limpar.
// @Summary Limpa a sessão
// @Tags caixa
// @Produce json
// @Success 200 {object} domain.SessionView
// @Router /caixa/limpar [post]
func (h *Handler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearAll(); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, h.Service.View(), nil, http.StatusOK)
}

// FinalizeHandler lida com POST /v1/caixa/finalizar.
// @Summary Finaliza o lote
// @Description Envia todas as linhas em uma única movimentação. Em caso de recusa os itens são mantidos.
// @Tags caixa
// @Produce json
// @Success 200 {object} finalizeResponse
// @Failure 400 {object} domain.ErrorResponse "Lote vazio ou depósitos inválidos"
// @Failure 409 {object} domain.ErrorResponse "Envio em andamento"
// @Failure 422 {object} domain.ErrorResponse "Recusado pelo backend (mensagens)"
// @Router /caixa/finalizar [post]
func (h *Handler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Finalize(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, finalizeResponse{Result: res, View: h.Service.View()}, nil, http.StatusOK)
}

// SettingsHandler lida com PUT /v1/caixa/configuracao.
// @Summary Altera a configuração da sessão
// @Description Campos ausentes são mantidos. Trocar modo ou tipo não limpa o lote.
// @Tags caixa
// @Accept json
// @Produce json
// @Param configuracao body domain.SettingsPatch true "Alteração parcial"
// @Success 200 {object} domain.SessionSettings
// @Failure 400 {object} domain.ErrorResponse
// @Router /caixa/configuracao [put]
func (h *Handler) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if !h.decode(w, r, &patch) {
		return
	}
	settings, err := h.Service.UpdateSettings(patch)
	h.handleServiceResponse(w, r, settings, err, http.StatusOK)
}

// ShortcutHandler lida com POST /v1/caixa/atalhos/{tecla}.
// @Summary Executa uma tecla de atalho
// @Description F2 tipo, F3 modo, F4 limpar, +/- quantidade rápida, F6 reset, F7 câmera, F8/CTRL+Z desfazer, F10 finalizar.
// @Tags caixa
// @Produce json
// @Param tecla path string true "Tecla"
// @Param campoTexto query bool false "Foco em campo de texto"
// @Success 200 {object} caixaservice.ShortcutResult
// @Failure 404 {object} domain.ErrorResponse "Tecla sem atalho"
// @Router /caixa/atalhos/{tecla} [post]
func (h *Handler) ShortcutHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("tecla")
	inTextField := r.URL.Query().Get("campoTexto") == "true"

	action, ok := h.Keymap.Resolve(key, inTextField)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewNotFoundError(fmt.Sprintf("Tecla %s sem atalho.", key)), http.StatusOK)
		return
	}
	res, err := h.Service.Dispatch(r.Context(), action)
	h.handleServiceResponse(w, r, res, err, http.StatusOK)
}

// ExportHandler lida com GET /v1/caixa/exportar.
// @Summary Planilha de conferência
// @Tags caixa
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /caixa/exportar [get]
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Export()
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	filename := fmt.Sprintf("conferencia_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("Falha ao enviar planilha", err)
	}
}

// normalizeSource aceita apenas as origens conhecidas.
func normalizeSource(s scanner.Source) scanner.Source {
	switch scanner.Source(strings.ToLower(string(s))) {
	case scanner.SourceCamera:
		return scanner.SourceCamera
	case scanner.SourcePaste:
		return scanner.SourcePaste
	case scanner.SourceManual:
		return scanner.SourceManual
	default:
		return scanner.SourceWedge
	}
}
