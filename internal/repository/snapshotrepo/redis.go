package snapshotrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gocaixa/internal/domain"
	"gocaixa/internal/errors"
	"gocaixa/internal/pkg/cache"
	"gocaixa/internal/pkg/logger"
)

// RedisRepository grava o snapshot em uma única chave do Redis, sem TTL.
type RedisRepository struct {
	Cache   cache.Client
	Timeout time.Duration
	logger  logger.Logger
}

// NewRedisRepository cria o repositório sobre o cliente de cache.
func NewRedisRepository(c cache.Client, timeout time.Duration, logger logger.Logger) *RedisRepository {
	return &RedisRepository{Cache: c, Timeout: timeout, logger: logger}
}

// Load lê e desserializa o snapshot. Chave ausente devolve NotFoundError.
func (r *RedisRepository) Load(ctx context.Context, key string) (domain.Snapshot, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	raw, err := r.Cache.Get(ctxTimeout, key)
	if err == cache.ErrCacheMiss {
		return domain.Snapshot{}, errors.NewNotFoundError(fmt.Sprintf("Snapshot %s não existe.", key))
	}
	if err != nil {
		r.logger.Error("Falha ao ler snapshot do Redis.", err)
		return domain.Snapshot{}, errors.NewInternalError("Falha ao ler snapshot.", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		r.logger.Error("Snapshot corrompido no Redis.", err)
		return domain.Snapshot{}, errors.NewInternalError("Snapshot ilegível.", err)
	}
	return snap, nil
}

// Save sobrescreve o slot com o snapshot serializado.
func (r *RedisRepository) Save(ctx context.Context, key string, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.NewInternalError("Falha ao serializar snapshot.", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if err := r.Cache.Set(ctxTimeout, key, payload, 0); err != nil {
		r.logger.Error("Falha ao gravar snapshot no Redis.", err)
		return errors.NewInternalError("Falha ao gravar snapshot.", err)
	}
	return nil
}

// Delete apaga o slot.
func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if err := r.Cache.Delete(ctxTimeout, key); err != nil {
		r.logger.Error("Falha ao remover snapshot do Redis.", err)
		return errors.NewInternalError("Falha ao remover snapshot.", err)
	}
	return nil
}
