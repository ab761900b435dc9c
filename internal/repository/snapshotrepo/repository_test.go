package snapshotrepo_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/cache"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/repository/snapshotrepo"
)

const key = "caixa:leitura-estoque:caixa-01"

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Items: []domain.LineItem{
			{VariationID: "101", Code: "7891000100101", Reference: "CAM-P-AZ", Name: "Camiseta P Azul", Quantity: 5, KnownStock: 12},
			{VariationID: "102", Code: "7891000100102", Reference: "CAM-M-AZ", Name: "Camiseta M Azul", Quantity: 1, KnownStock: 3},
		},
		OperationType: domain.OperationSaida,
		DepotID:       "1",
		Mode:          domain.ModeNormal,
		QuickQuantity: 3,
		AutoReset:     true,
	}
}

func TestRedisRepository_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)
	repo := snapshotrepo.NewRedisRepository(client, time.Second, logger.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, key, sampleSnapshot()))

	got, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	assert.Equal(t, 0*time.Second, mr.TTL(key), "slot não expira")

	require.NoError(t, repo.Delete(ctx, key))
	_, err = repo.Load(ctx, key)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestRedisRepository_StoredShape(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)
	repo := snapshotrepo.NewRedisRepository(client, time.Second, logger.NewNopLogger())

	require.NoError(t, repo.Save(context.Background(), key, sampleSnapshot()))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var blob map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &blob))
	for _, field := range []string{"itens", "tipo", "depositoId", "origemId", "destinoId", "mode", "qtdRapida"} {
		assert.Contains(t, blob, field)
	}
}

func TestRedisRepository_CorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)
	repo := snapshotrepo.NewRedisRepository(client, time.Second, logger.NewNopLogger())
	require.NoError(t, mr.Set(key, "{nao-e-json"))

	_, err = repo.Load(context.Background(), key)

	assert.IsType(t, &apperror.InternalError{}, err)
}

func TestPostgresRepository_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := snapshotrepo.NewPostgresRepository(db, time.Second, logger.NewNopLogger())

	payload, _ := json.Marshal(sampleSnapshot())
	mock.ExpectQuery("SELECT payload FROM caixa_snapshots WHERE storage_key").
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	got, err := repo.Load(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_LoadMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := snapshotrepo.NewPostgresRepository(db, time.Second, logger.NewNopLogger())

	mock.ExpectQuery("SELECT payload FROM caixa_snapshots").WithArgs(key).WillReturnError(sql.ErrNoRows)

	_, err = repo.Load(context.Background(), key)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestPostgresRepository_SaveUpsertsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := snapshotrepo.NewPostgresRepository(db, time.Second, logger.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO caixa_snapshots").
		WithArgs(key, sqlmock.AnyArg(), 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), key, sampleSnapshot()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := snapshotrepo.NewPostgresRepository(db, time.Second, logger.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO caixa_snapshots").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.Save(context.Background(), key, sampleSnapshot())

	assert.IsType(t, &apperror.InternalError{}, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := snapshotrepo.NewPostgresRepository(db, time.Second, logger.NewNopLogger())

	mock.ExpectExec("DELETE FROM caixa_snapshots WHERE storage_key").WithArgs(key).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), key))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository_RoundTrip(t *testing.T) {
	repo := snapshotrepo.NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Load(ctx, key)
	assert.IsType(t, &apperror.NotFoundError{}, err)

	require.NoError(t, repo.Save(ctx, key, sampleSnapshot()))
	got, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), got)
}
