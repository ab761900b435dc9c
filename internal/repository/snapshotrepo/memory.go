package snapshotrepo

import (
	"context"
	"fmt"
	"sync"

	"gocaixa/internal/domain"
	"gocaixa/internal/errors"
)

// MemoryRepository mantém o snapshot apenas no processo (MIRROR_BACKEND=none).
// Não sobrevive a um reinício; útil em desenvolvimento e testes.
type MemoryRepository struct {
	mu    sync.Mutex
	slots map[string]domain.Snapshot
}

// NewMemoryRepository cria um repositório em memória vazio.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{slots: make(map[string]domain.Snapshot)}
}

func (r *MemoryRepository) Load(_ context.Context, key string) (domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.slots[key]
	if !ok {
		return domain.Snapshot{}, errors.NewNotFoundError(fmt.Sprintf("Snapshot %s não existe.", key))
	}
	snap.Items = append([]domain.LineItem(nil), snap.Items...)
	return snap, nil
}

func (r *MemoryRepository) Save(_ context.Context, key string, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap.Items = append([]domain.LineItem{}, snap.Items...)
	r.slots[key] = snap
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, key)
	return nil
}
