package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
)

const (
	pathCaixaFinalizar  = "/estoque/caixa/finalizar"
	pathCaixaTransferir = "/estoque/caixa/transferir"
	pathLote            = "/estoque/movimentacoes/lote"
)

type normalPayload struct {
	Type    domain.OperationType `json:"tipo"`
	DepotID string               `json:"deposito_id"`
	Items   []domain.BatchItem   `json:"itens"`
}

type transferPayload struct {
	SourceDepotID string             `json:"deposito_origem_id"`
	DestDepotID   string             `json:"deposito_destino_id"`
	Items         []domain.BatchItem `json:"itens"`
}

// lotePayload é o formato único de /estoque/movimentacoes/lote.
type lotePayload struct {
	Type          string             `json:"tipo"`
	DepotID       string             `json:"deposito_id,omitempty"`
	SourceDepotID string             `json:"deposito_origem_id,omitempty"`
	DestDepotID   string             `json:"deposito_destino_id,omitempty"`
	Items         []domain.BatchItem `json:"itens"`
}

// buildSubmit escolhe endpoint e payload conforme o modo e o estilo configurado.
func (c *Client) buildSubmit(req domain.BatchRequest) (string, interface{}) {
	transfer := req.Mode == domain.ModeTransfer

	if c.submitStyle == StyleLote {
		p := lotePayload{Items: req.Items}
		if transfer {
			p.Type = "transferencia"
			p.SourceDepotID = req.SourceDepotID
			p.DestDepotID = req.DestDepotID
		} else {
			p.Type = string(req.OperationType)
			p.DepotID = req.DepotID
		}
		return pathLote, p
	}

	if transfer {
		return pathCaixaTransferir, transferPayload{
			SourceDepotID: req.SourceDepotID,
			DestDepotID:   req.DestDepotID,
			Items:         req.Items,
		}
	}
	return pathCaixaFinalizar, normalPayload{
		Type:    req.OperationType,
		DepotID: req.DepotID,
		Items:   req.Items,
	}
}

// Submit envia o lote em uma única requisição. Recusas do backend viram
// SubmitRejectedError com todas as mensagens normalizadas.
func (c *Client) Submit(ctx context.Context, req domain.BatchRequest, idempotencyKey string) (domain.BatchResult, error) {
	if len(req.Items) == 0 {
		return domain.BatchResult{}, apperror.NewValidationError("Lote vazio.")
	}

	path, payload := c.buildSubmit(req)
	resp, err := c.do(ctx, http.MethodPost, path, requestOptions{body: payload, idempotencyKey: idempotencyKey})
	if err != nil {
		return domain.BatchResult{}, err
	}
	if !resp.ok() {
		return domain.BatchResult{}, apperror.NewSubmitRejectedError(resp.Status, NormalizeErrorBody(resp.Body, resp.Status))
	}

	var body submitResponse
	if len(strings.TrimSpace(string(resp.Body))) > 0 {
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return domain.BatchResult{}, apperror.NewNetworkError("resposta de finalização ilegível", err)
		}
	}
	if body.Success != nil && !*body.Success {
		return domain.BatchResult{}, apperror.NewSubmitRejectedError(resp.Status, NormalizeErrorBody(resp.Body, resp.Status))
	}

	result := domain.BatchResult{
		Message:     firstNonEmpty(body.Mensagem, body.Message),
		DocumentURL: strings.TrimSpace(body.Document),
		TransferID:  string(body.TransferID),
	}
	if result.Message == "" {
		result.Message = "Movimentação registrada."
	}

	c.logger.Info("Lote finalizado no backend.", map[string]interface{}{
		"path":            path,
		"itens":           len(req.Items),
		"idempotency_key": idempotencyKey,
		"transferencia":   result.TransferID,
	})
	return result, nil
}
