// Package station monta a sessão de leitura a partir da configuração:
// espelho (redis, postgres ou memória), cliente do backend e repositório de documentos.
package station

import (
	"context"
	"database/sql"
	"fmt"

	"gocaixa/config"
	"gocaixa/internal/gateway/backend"
	"gocaixa/internal/pkg/cache"
	"gocaixa/internal/pkg/database"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/repository/documentrepo"
	"gocaixa/internal/repository/snapshotrepo"
	"gocaixa/internal/service/caixaservice"
)

// Station reúne a sessão montada e os recursos que precisam ser fechados.
type Station struct {
	Service *caixaservice.Service

	db    *sql.DB
	cache cache.Client
	log   logger.Logger
}

// Build injeta as dependências na ordem Repository -> Gateway -> Service e
// inicia a sessão.
func Build(ctx context.Context, cfg *config.Config, cue caixaservice.Cue, log logger.Logger) (*Station, error) {
	st := &Station{log: log}

	snapshots, err := st.mirror(cfg)
	if err != nil {
		st.release()
		return nil, err
	}

	gw := backend.NewClient(backend.Options{
		BaseURL:     cfg.BackendURL,
		Token:       cfg.BackendToken,
		Timeout:     cfg.BackendTimeout,
		SubmitStyle: cfg.SubmitStyle,
		Cache:       st.cache,
		DepotTTL:    cfg.DepotCacheTTL,
	}, log)
	log.Debug("Cliente do backend inicializado.", map[string]interface{}{"url": cfg.BackendURL, "estilo": cfg.SubmitStyle})

	docs := documentrepo.NewFileRepository(cfg.DocumentDir, log)

	st.Service = caixaservice.NewService(gw, snapshots, docs, caixaservice.Options{
		StorageKey:     cfg.StorageKey,
		MirrorTimeout:  cfg.CacheTimeout,
		FetchDocuments: cfg.FetchDocuments,
		Cue:            cue,
	}, log)

	if err := st.Service.Start(ctx); err != nil {
		st.Close(context.Background())
		return nil, fmt.Errorf("falha ao iniciar a sessão: %w", err)
	}
	log.Info("Sessão de leitura iniciada.", map[string]interface{}{"estacao": cfg.StationID, "espelho": cfg.MirrorBackend})
	return st, nil
}

// mirror escolhe o repositório do espelho conforme MIRROR_BACKEND.
func (st *Station) mirror(cfg *config.Config) (caixaservice.SnapshotRepository, error) {
	switch cfg.MirrorBackend {
	case config.MirrorPostgres:
		db, err := database.NewPostgresDB(cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
		}
		st.db = db
		st.log.Info("Conexão PostgreSQL estabelecida.", nil)
		return snapshotrepo.NewPostgresRepository(db, cfg.DBTimeout, st.log), nil

	case config.MirrorNone:
		st.log.Warn("Espelho desativado: a sessão não sobrevive a reinícios.", nil)
		return snapshotrepo.NewMemoryRepository(), nil

	default:
		client, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			if client != nil {
				client.Close()
			}
			st.log.Warn("Redis indisponível. Usando espelho em memória.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
			return snapshotrepo.NewMemoryRepository(), nil
		}
		st.cache = client
		st.log.Info("Conexão Redis estabelecida.", nil)
		return snapshotrepo.NewRedisRepository(client, cfg.CacheTimeout, st.log), nil
	}
}

// Close grava o último snapshot pendente e fecha as conexões.
func (st *Station) Close(ctx context.Context) {
	if st.Service != nil {
		if err := st.Service.Close(ctx); err != nil {
			st.log.Error("Falha ao encerrar a sessão.", err)
		}
	}
	st.release()
}

func (st *Station) release() {
	if st.cache != nil {
		if err := st.cache.Close(); err != nil {
			st.log.Error("Falha ao fechar o Redis.", err)
		}
	}
	if st.db != nil {
		if err := st.db.Close(); err != nil {
			st.log.Error("Falha ao fechar o banco de dados.", err)
		}
	}
}
