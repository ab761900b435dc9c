package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "gocaixa/docs" // registra a especificação servida em /swagger/doc.json
	"gocaixa/internal/api/caixa"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(caixaHandler *caixa.Handler, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// --- 1. Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Estação de leitura (v1) ---
	caixaHandler.Register(mux)

	// --- 3. Documentação ---
	mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// --- 4. Middlewares globais ---
	return middleware.Recover(log)(middleware.Logging(log)(mux))
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
