package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/cache"
)

const depotCacheKey = "caixa:depositos"

// ListDepots devolve os depósitos disponíveis, usando a estratégia cache-aside.
// Falhas do cache são ignoradas: o backend é a fonte.
func (c *Client) ListDepots(ctx context.Context) ([]domain.Depot, error) {
	if c.cache != nil && c.depotTTL > 0 {
		cached, err := c.cache.Get(ctx, depotCacheKey)
		if err == nil {
			var depots []domain.Depot
			if json.Unmarshal([]byte(cached), &depots) == nil {
				return depots, nil
			}
		} else if err != cache.ErrCacheMiss {
			c.logger.Warn("Falha ao ler depósitos do cache.", map[string]interface{}{"error": err.Error()})
		}
	}

	resp, err := c.do(ctx, http.MethodGet, "/depositos", requestOptions{})
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, apperror.NewNetworkError("falha ao listar depósitos", nil)
	}

	var wire []wireDepot
	if err := decodeList(resp.Body, &wire); err != nil {
		return nil, apperror.NewNetworkError("lista de depósitos ilegível", err)
	}
	depots := make([]domain.Depot, 0, len(wire))
	for _, d := range wire {
		if d.ID == "" {
			continue
		}
		depots = append(depots, domain.Depot{ID: string(d.ID), Name: d.Name})
	}

	if c.cache != nil && c.depotTTL > 0 {
		if payload, err := json.Marshal(depots); err == nil {
			if err := c.cache.Set(ctx, depotCacheKey, payload, c.depotTTL); err != nil {
				c.logger.Warn("Falha ao gravar depósitos no cache.", map[string]interface{}{"error": err.Error()})
			}
		}
	}
	return depots, nil
}
