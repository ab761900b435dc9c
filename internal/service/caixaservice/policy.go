package caixaservice

import (
	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
)

// checkStock é a pré-validação consultiva de saldo. Só se aplica quando o contexto
// retira estoque (saída ou transferência); o backend revalida na finalização.
// A adição é recusada por inteiro quando o saldo conhecido não cobre o total da linha.
func checkStock(s domain.SessionSettings, v domain.Variation, pending, requested int) error {
	if !s.ConsumesStock() {
		return nil
	}
	total := pending + requested
	if v.KnownStock <= 0 || v.KnownStock < total {
		label := v.Code
		if label == "" {
			label = v.Reference
		}
		return apperror.NewInsufficientStockError(label, v.KnownStock, total)
	}
	return nil
}

// checkLocations valida os depósitos exigidos pelo modo atual antes do envio.
func checkLocations(s domain.SessionSettings) error {
	if s.Mode == domain.ModeTransfer {
		if s.SourceDepotID == "" || s.DestDepotID == "" {
			return apperror.NewValidationError("Selecione os depósitos de origem e destino.")
		}
		if s.SourceDepotID == s.DestDepotID {
			return apperror.NewValidationError("Origem e destino da transferência devem ser diferentes.")
		}
		return nil
	}
	if s.DepotID == "" {
		return apperror.NewValidationError("Selecione o depósito.")
	}
	return nil
}

// batchRequest monta a requisição de envio a partir das linhas e do modo.
func batchRequest(s domain.SessionSettings, items []domain.BatchItem) domain.BatchRequest {
	req := domain.BatchRequest{Mode: s.Mode, Items: items}
	if s.Mode == domain.ModeTransfer {
		req.SourceDepotID = s.SourceDepotID
		req.DestDepotID = s.DestDepotID
		return req
	}
	req.OperationType = s.OperationType
	req.DepotID = s.DepotID
	return req
}
