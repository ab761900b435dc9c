package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/ledongthuc/pdf"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
)

// FetchDocument baixa o documento de transferência (URL absoluta ou relativa à API)
// e confere que é um PDF legível.
func (c *Client) FetchDocument(ctx context.Context, location string) (domain.TransferDocument, error) {
	if location == "" {
		return domain.TransferDocument{}, apperror.NewValidationError("Documento sem endereço.")
	}

	resp, err := c.do(ctx, http.MethodGet, location, requestOptions{accept: "application/pdf"})
	if err != nil {
		return domain.TransferDocument{}, err
	}
	if !resp.ok() {
		return domain.TransferDocument{}, apperror.NewNotFoundError(fmt.Sprintf("documento indisponível (HTTP %d)", resp.Status))
	}

	pages, err := countPages(resp.Body)
	if err != nil {
		return domain.TransferDocument{}, apperror.NewNetworkError("documento de transferência inválido", err)
	}
	return domain.TransferDocument{Data: resp.Body, Pages: pages}, nil
}

func countPages(data []byte) (pages int, err error) {
	// O parser entra em pânico com alguns arquivos truncados.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf malformado: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("pdf sem páginas")
	}
	return pages, nil
}
