package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"gocaixa/internal/pkg/logger"
)

func TestLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithWriter("debug", &buf)
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/caixa/scan", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, buf.String(), `"status":502`)
	assert.Contains(t, buf.String(), `"path":"/v1/caixa/scan"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestRecover_ReturnsInternalError(t *testing.T) {
	h := Recover(logger.NewNopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/caixa", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
