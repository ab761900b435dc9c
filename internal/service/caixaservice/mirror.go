package caixaservice

import (
	"context"
	"sync"
	"time"

	"gocaixa/internal/domain"
	"gocaixa/internal/pkg/logger"
)

// mirrorOp é a última operação pendente para o slot do espelho.
type mirrorOp struct {
	snap   domain.Snapshot
	delete bool
}

// mirrorWriter grava o snapshot da sessão em segundo plano. As mutações só
// enfileiram a operação; enquanto uma gravação está em andamento, novas
// operações substituem a pendente (a última vence). Falhas são registradas e
// descartadas.
type mirrorWriter struct {
	repo    SnapshotRepository
	key     string
	timeout time.Duration
	logger  logger.Logger

	mu      sync.Mutex
	pending *mirrorOp
	closed  bool

	wake  chan struct{}
	flush chan chan struct{}
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newMirrorWriter(repo SnapshotRepository, key string, timeout time.Duration, log logger.Logger) *mirrorWriter {
	w := &mirrorWriter{
		repo:    repo,
		key:     key,
		timeout: timeout,
		logger:  log,
		wake:    make(chan struct{}, 1),
		flush:   make(chan chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Save agenda a gravação do snapshot. Nunca bloqueia.
func (w *mirrorWriter) Save(snap domain.Snapshot) {
	w.enqueue(&mirrorOp{snap: snap})
}

// Clear agenda a remoção do slot. Nunca bloqueia.
func (w *mirrorWriter) Clear() {
	w.enqueue(&mirrorOp{delete: true})
}

func (w *mirrorWriter) enqueue(op *mirrorOp) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = op
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *mirrorWriter) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case reply := <-w.flush:
			w.drain()
			close(reply)
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *mirrorWriter) drain() {
	for {
		w.mu.Lock()
		op := w.pending
		w.pending = nil
		w.mu.Unlock()
		if op == nil {
			return
		}
		w.apply(op)
	}
}

func (w *mirrorWriter) apply(op *mirrorOp) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var err error
	if op.delete {
		err = w.repo.Delete(ctx, w.key)
	} else {
		err = w.repo.Save(ctx, w.key, op.snap)
	}
	if err != nil {
		w.logger.Warn("Falha ao gravar espelho da sessão (ignorada).", map[string]interface{}{
			"key":    w.key,
			"delete": op.delete,
			"error":  err.Error(),
		})
		return
	}
	w.logger.Debug("Espelho da sessão atualizado.", map[string]interface{}{"key": w.key, "delete": op.delete, "itens": len(op.snap.Items)})
}

// Flush espera até que a operação pendente no momento da chamada seja aplicada.
func (w *mirrorWriter) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case w.flush <- reply:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close aplica a última operação pendente e encerra o gravador.
func (w *mirrorWriter) Close(ctx context.Context) error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.stop)
	})
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
