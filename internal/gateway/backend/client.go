// Package backend é o cliente REST do backend de inventário: resolve códigos lidos,
// lista depósitos, envia o lote finalizado e baixa o documento de transferência.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/cache"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/pkg/token"
)

const (
	maxBodyBytes = 10 << 20
	tokenSkew    = 30 * time.Second
)

// Estilos de envio aceitos por Submit.
const (
	StyleCaixa = "caixa"
	StyleLote  = "lote"
)

// Options agrupa as dependências do cliente.
type Options struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	SubmitStyle string
	Cache       cache.Client // opcional: cache-aside da lista de depósitos
	DepotTTL    time.Duration
	HTTPClient  *http.Client // opcional: substitui o cliente padrão (testes)
}

// Client fala com o backend de inventário.
type Client struct {
	baseURL     string
	token       string
	submitStyle string
	http        *http.Client
	inspector   *token.Inspector
	cache       cache.Client
	depotTTL    time.Duration
	logger      logger.Logger
	now         func() time.Time
}

// NewClient cria o cliente do backend.
func NewClient(opts Options, log logger.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	style := opts.SubmitStyle
	if style != StyleLote {
		style = StyleCaixa
	}
	return &Client{
		baseURL:     opts.BaseURL,
		token:       opts.Token,
		submitStyle: style,
		http:        httpClient,
		inspector:   token.NewInspector(),
		cache:       opts.Cache,
		depotTTL:    opts.DepotTTL,
		logger:      log,
		now:         time.Now,
	}
}

// response é o resultado cru de uma chamada.
type response struct {
	Status int
	Body   []byte
}

func (r response) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

type requestOptions struct {
	query          url.Values
	body           interface{}
	idempotencyKey string
	accept         string
}

// do executa a requisição. Erros de transporte e 5xx viram NetworkError;
// 401/403 viram UnauthorizedError; demais status são devolvidos ao chamador.
func (c *Client) do(ctx context.Context, method, path string, opts requestOptions) (response, error) {
	if err := c.checkToken(); err != nil {
		return response{}, err
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(opts.query) > 0 {
		target += "?" + opts.query.Encode()
	}

	var body io.Reader
	if opts.body != nil {
		payload, err := json.Marshal(opts.body)
		if err != nil {
			return response{}, apperror.NewInternalError("Falha ao serializar requisição.", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, apperror.NewInternalError("Requisição inválida.", err)
	}
	accept := opts.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Falha de comunicação com o backend.", map[string]interface{}{"method": method, "path": path, "error": err.Error()})
		return response{}, apperror.NewNetworkError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, apperror.NewNetworkError("falha ao ler resposta do backend", err)
	}

	c.logger.Debug("Resposta do backend.", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": c.now().Sub(started).Milliseconds(),
	})

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return response{}, apperror.NewUnauthorizedError(fmt.Sprintf("backend respondeu HTTP %d em %s", resp.StatusCode, path))
	case resp.StatusCode >= 500:
		return response{}, apperror.NewNetworkError(fmt.Sprintf("backend respondeu HTTP %d em %s", resp.StatusCode, path), nil)
	}
	return response{Status: resp.StatusCode, Body: raw}, nil
}

// checkToken falha cedo quando o token JWT configurado já expirou.
// Tokens opacos não são inspecionados.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	claims, err := c.inspector.Inspect(c.token)
	if errors.Is(err, token.ErrOpaqueToken) {
		return nil
	}
	if err != nil {
		return apperror.NewUnauthorizedError("token do backend malformado")
	}
	if claims.Expired(c.now(), tokenSkew) {
		return apperror.NewUnauthorizedError(fmt.Sprintf("token do backend expirou em %s", claims.ExpiresAt.Format(time.RFC3339)))
	}
	return nil
}
