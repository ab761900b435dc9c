package caixaservice

import (
	"context"
	"fmt"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/scanner"
)

// ShortcutResult é o efeito de uma tecla de atalho. Batch só é preenchido pela
// finalização.
type ShortcutResult struct {
	Action scanner.Action      `json:"acao"`
	Undone bool                `json:"desfeito,omitempty"`
	Batch  *domain.BatchResult `json:"lote,omitempty"`
	View   domain.SessionView  `json:"sessao"`
}

// Dispatch executa a ação associada a um atalho do operador.
func (s *Service) Dispatch(ctx context.Context, action scanner.Action) (ShortcutResult, error) {
	out := ShortcutResult{Action: action}
	var err error

	switch action {
	case scanner.ActionToggleOperation:
		_, err = s.ToggleOperationType()
	case scanner.ActionToggleMode:
		_, err = s.ToggleMode()
	case scanner.ActionClearAll:
		err = s.ClearAll()
	case scanner.ActionQuickQuantityUp:
		_, err = s.AdjustQuickQuantity(1)
	case scanner.ActionQuickQuantityDown:
		_, err = s.AdjustQuickQuantity(-1)
	case scanner.ActionQuickQuantityReset:
		err = s.ResetQuickQuantity()
	case scanner.ActionToggleCamera:
		_, err = s.ToggleCamera()
	case scanner.ActionUndo:
		out.Undone, err = s.Undo()
	case scanner.ActionFinalize:
		var res domain.BatchResult
		res, err = s.Finalize(ctx)
		if err == nil {
			out.Batch = &res
		}
	default:
		return ShortcutResult{}, apperror.NewValidationError(fmt.Sprintf("Ação '%s' desconhecida.", action))
	}
	if err != nil {
		return ShortcutResult{}, err
	}

	out.View = s.View()
	return out, nil
}
