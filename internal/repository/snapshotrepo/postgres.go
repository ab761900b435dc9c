package snapshotrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gocaixa/internal/domain"
	"gocaixa/internal/errors"
	"gocaixa/internal/pkg/logger"
)

// PostgresRepository grava o snapshot da sessão na tabela caixa_snapshots
// (uma linha por chave de armazenamento, last-write-wins).
type PostgresRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewPostgresRepository cria e retorna uma nova instância do Repositório de Snapshots.
func NewPostgresRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Load busca o snapshot da chave. Sem linha, devolve NotFoundError.
func (r *PostgresRepository) Load(ctx context.Context, key string) (domain.Snapshot, error) {
	r.logger.Debug("Buscando snapshot no repositório.", map[string]interface{}{"storage_key": key})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT payload
        FROM caixa_snapshots
        WHERE storage_key = $1`

	var payload []byte
	err := r.DB.QueryRowContext(ctxTimeout, query, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, errors.NewNotFoundError(fmt.Sprintf("Snapshot %s não existe.", key))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar snapshot no DB.", err)
		return domain.Snapshot{}, errors.NewDBError("Falha ao buscar snapshot", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		r.logger.Error("Snapshot corrompido no DB.", err)
		return domain.Snapshot{}, errors.NewInternalError("Snapshot ilegível.", err)
	}
	return snap, nil
}

// Save substitui o snapshot da chave dentro de uma transação (upsert).
func (r *PostgresRepository) Save(ctx context.Context, key string, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.NewInternalError("Falha ao serializar snapshot.", err)
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação do snapshot.", err)
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Sem efeito após Commit

	queryUpsert := `
        INSERT INTO caixa_snapshots (storage_key, payload, item_count, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (storage_key)
        DO UPDATE SET payload = EXCLUDED.payload, item_count = EXCLUDED.item_count, updated_at = EXCLUDED.updated_at`

	if _, err := tx.ExecContext(ctxTimeout, queryUpsert, key, payload, len(snap.Items), time.Now().UTC()); err != nil {
		r.logger.Error("Falha ao gravar snapshot.", err)
		return errors.NewDBError("Falha ao gravar snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação do snapshot.", err)
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Debug("Snapshot gravado.", map[string]interface{}{"storage_key": key, "itens": len(snap.Items)})
	return nil
}

// Delete remove o snapshot da chave (sem erro se não existir).
func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM caixa_snapshots WHERE storage_key = $1`, key); err != nil {
		r.logger.Error("Falha ao remover snapshot.", err)
		return errors.NewDBError("Falha ao remover snapshot", err)
	}
	r.logger.Debug("Snapshot removido.", map[string]interface{}{"storage_key": key})
	return nil
}
