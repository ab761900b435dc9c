package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"gocaixa/internal/api/caixa"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/scanner"
)

func TestPingHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	PingHandler(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())

	rr = httptest.NewRecorder()
	PingHandler(rr, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestNewRouter_ServesSwaggerSpec(t *testing.T) {
	log := logger.NewNopLogger()
	h := caixa.NewHandler(nil, scanner.NewKeymap(scanner.DefaultShortcuts), log)
	r := NewRouter(h, log)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/caixa/scan")
}
