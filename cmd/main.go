package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gocaixa/config"
	"gocaixa/internal/api/caixa"
	"gocaixa/internal/api/router"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/scanner"
	"gocaixa/internal/station"
)

// @title GoCaixa API
// @version 1.0
// @description Estação de leitura de estoque: leituras, lote pendente e finalização de movimentações.
// @BasePath /v1
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando estação GoCaixa...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", map[string]interface{}{"estacao": cfg.StationID, "ambiente": cfg.Environment})

	// 2. Sessão (espelho + backend + documentos)
	startCtx, cancelStart := context.WithTimeout(context.Background(), cfg.BackendTimeout+5*time.Second)
	st, err := station.Build(startCtx, cfg, nil, log)
	cancelStart()
	if err != nil {
		log.Fatal("Falha ao montar a estação.", err)
	}

	// 3. Handler e Roteador
	caixaHandler := caixa.NewHandler(st.Service, scanner.NewKeymap(scanner.DefaultShortcuts), log)
	log.Debug("Handler da estação inicializado.", nil)

	r := router.NewRouter(caixaHandler, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second, // finalização espera o backend
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoCaixa ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}
	st.Close(ctx)

	log.Info("Servidor encerrado com sucesso.", nil)
}
