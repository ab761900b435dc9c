package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backends aceitos para o espelho de sessão.
const (
	MirrorRedis    = "redis"
	MirrorPostgres = "postgres"
	MirrorNone     = "none"
)

// Estilos de envio do lote finalizado.
const (
	SubmitStyleCaixa = "caixa" // /estoque/caixa/finalizar | /estoque/caixa/transferir
	SubmitStyleLote  = "lote"  // /estoque/movimentacoes/lote
)

// Config armazena todas as configurações da estação GoCaixa.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string
	StationID   string

	// Backend de inventário (REST)
	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration
	SubmitStyle    string
	DocumentDir    string
	FetchDocuments bool

	// Espelho da sessão
	MirrorBackend string
	StorageKey    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr     string
	CacheTimeout  time.Duration
	DepotCacheTTL time.Duration

	// Leitor (keyboard-wedge)
	WedgeMaxGap time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	stationID := getEnv("STATION_ID", "caixa-01")

	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StationID:   stationID,

		// 2. Backend
		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8000/api"), "/"),
		BackendToken:   getEnv("BACKEND_TOKEN", ""),
		BackendTimeout: getDurationEnv("BACKEND_TIMEOUT_SEC", 15) * time.Second,
		SubmitStyle:    getEnv("SUBMIT_STYLE", SubmitStyleCaixa),
		DocumentDir:    getEnv("DOCUMENT_DIR", "./documentos"),
		FetchDocuments: getBoolEnv("FETCH_DOCUMENTS", true),

		// 3. Espelho
		MirrorBackend: strings.ToLower(getEnv("MIRROR_BACKEND", MirrorRedis)),
		StorageKey:    getEnv("STORAGE_KEY", "caixa:leitura-estoque:"+stationID),

		// 4. Banco de Dados (apenas para MIRROR_BACKEND=postgres)
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 5. Cache (Redis)
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTimeout:  getDurationEnv("CACHE_TIMEOUT_SEC", 2) * time.Second,
		DepotCacheTTL: getDurationEnv("DEPOT_CACHE_TTL_MIN", 10) * time.Minute,

		// 6. Leitor (0 desativa o reset por intervalo entre teclas)
		WedgeMaxGap: getDurationEnv("WEDGE_MAX_GAP_MS", 0) * time.Millisecond,
	}

	if cfg.SubmitStyle != SubmitStyleCaixa && cfg.SubmitStyle != SubmitStyleLote {
		log.Printf("⚠️ Aviso: SUBMIT_STYLE '%s' desconhecido. Usando '%s'.", cfg.SubmitStyle, SubmitStyleCaixa)
		cfg.SubmitStyle = SubmitStyleCaixa
	}
	if cfg.MirrorBackend == MirrorPostgres && cfg.DatabaseURL == "" {
		log.Fatalf("❌ Erro de Configuração: MIRROR_BACKEND=postgres exige DATABASE_URL.")
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	return time.Duration(getIntEnv(key, defaultValue))
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getBoolEnv lê uma variável de ambiente booleana ("true", "1", "false", "0"...).
func getBoolEnv(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é booleano. Usando padrão (%t).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
