package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
)

// Resolve transforma um código lido em uma variação com o saldo do depósito.
// Tenta primeiro a leitura direta; se o código não é um código de barras conhecido,
// cai para a busca textual. Falhas de rede não disparam o fallback.
func (c *Client) Resolve(ctx context.Context, code, depotID string) (domain.Variation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Variation{}, apperror.NewValidationError("Código vazio.")
	}

	v, err := c.scan(ctx, code, depotID)
	if err == nil {
		return v, nil
	}
	if _, notFound := err.(*apperror.NotFoundError); !notFound {
		return domain.Variation{}, err
	}

	candidates, err := c.Search(ctx, code, depotID)
	if err != nil {
		return domain.Variation{}, err
	}
	return pickCandidate(code, candidates)
}

// scan consulta GET /estoque/caixa/scan/<code>.
func (c *Client) scan(ctx context.Context, code, depotID string) (domain.Variation, error) {
	query := url.Values{}
	if depotID != "" {
		query.Set("deposito_id", depotID)
	}

	resp, err := c.do(ctx, http.MethodGet, "/estoque/caixa/scan/"+url.PathEscape(code), requestOptions{query: query})
	if err != nil {
		return domain.Variation{}, err
	}
	if !resp.ok() {
		return domain.Variation{}, apperror.NewNotFoundError(fmt.Sprintf("Código %s não encontrado.", code))
	}

	var body scanResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return domain.Variation{}, apperror.NewNetworkError("resposta de leitura ilegível", err)
	}
	v := body.Data.toDomain("", "")
	if !body.Success || v.ID == "" {
		return domain.Variation{}, apperror.NewNotFoundError(fmt.Sprintf("Código %s não encontrado.", code))
	}
	if v.Code == "" {
		v.Code = code
	}
	return v, nil
}

// Search faz a busca textual em /produtos e achata produtos em variações.
func (c *Client) Search(ctx context.Context, query, depotID string) ([]domain.Variation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidationError("Informe um termo de busca.")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("view", "minima")
	if depotID != "" {
		params.Set("deposito_id", depotID)
	}

	resp, err := c.do(ctx, http.MethodGet, "/produtos", requestOptions{query: params})
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNotFound {
		return []domain.Variation{}, nil
	}
	if !resp.ok() {
		report := NormalizeErrorBody(resp.Body, resp.Status)
		return nil, apperror.NewValidationError(strings.Join(report.Messages, "; "))
	}

	var products []wireProduct
	if err := decodeList(resp.Body, &products); err != nil {
		return nil, apperror.NewNetworkError("resposta de busca ilegível", err)
	}

	out := make([]domain.Variation, 0, len(products))
	for _, p := range products {
		for _, wv := range p.Variations {
			v := wv.toDomain(p.Name, p.Reference)
			if v.ID != "" {
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// pickCandidate escolhe o resultado único da busca. Com vários resultados, uma
// correspondência exata de código de barras ou referência desempata.
func pickCandidate(code string, candidates []domain.Variation) (domain.Variation, error) {
	switch len(candidates) {
	case 0:
		return domain.Variation{}, apperror.NewNotFoundError(fmt.Sprintf("Nenhuma variação encontrada para %s.", code))
	case 1:
		return candidates[0], nil
	}

	var exact []domain.Variation
	for _, v := range candidates {
		if strings.EqualFold(v.Code, code) || strings.EqualFold(v.Reference, code) {
			exact = append(exact, v)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	return domain.Variation{}, apperror.NewMultipleMatchesError(code, candidates)
}
