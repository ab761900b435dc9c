package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/cache"
	"gocaixa/internal/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler, mutate ...func(*Options)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts := Options{BaseURL: srv.URL, Token: "1|token-pessoal", Timeout: 2 * time.Second}
	for _, m := range mutate {
		m(&opts)
	}
	return NewClient(opts, logger.NewNopLogger()), srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// --- Resolve / Search ---

func TestResolve_DirectScan(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/ABC123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("deposito_id"))
		assert.Equal(t, "Bearer 1|token-pessoal", r.Header.Get("Authorization"))
		writeJSON(w, 200, `{"sucesso":true,"data":{"id":42,"codigo":"ABC123","referencia":"REF-1","nome":"Camiseta P","estoque":"10.000"}}`)
	})
	client, _ := newTestClient(t, mux)

	v, err := client.Resolve(context.Background(), " ABC123 ", "7")

	require.NoError(t, err)
	assert.Equal(t, domain.Variation{ID: "42", Code: "ABC123", Reference: "REF-1", Name: "Camiseta P", KnownStock: 10}, v)
}

func TestResolve_FallsBackToSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{"sucesso":false,"message":"Código não encontrado"}`)
	})
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "REF-9", r.URL.Query().Get("q"))
		assert.Equal(t, "minima", r.URL.Query().Get("view"))
		writeJSON(w, 200, `{"data":[{"id":1,"nome":"Calça","referencia":"REF-9","variacoes":[{"id":"v1","codigo_barras":"789","descricao":"Azul 40","estoque":3}]}]}`)
	})
	client, _ := newTestClient(t, mux)

	v, err := client.Resolve(context.Background(), "REF-9", "1")

	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, "789", v.Code)
	assert.Equal(t, "REF-9", v.Reference)
	assert.Equal(t, "Calça - Azul 40", v.Name)
	assert.Equal(t, 3, v.KnownStock)
}

func TestResolve_MultipleMatches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"sucesso":false}`)
	})
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"nome":"Meia","referencia":"M1","variacoes":[{"id":1,"codigo_barras":"111"},{"id":2,"codigo_barras":"222"}]}]`)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Resolve(context.Background(), "meia", "")

	var multi *apperror.MultipleMatchesError
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Candidates, 2)
}

func TestResolve_ExactCodeBreaksTie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{}`)
	})
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[{"nome":"Meia","referencia":"M1","variacoes":[{"id":1,"codigo_barras":"111"},{"id":2,"codigo_barras":"222"}]}]}`)
	})
	client, _ := newTestClient(t, mux)

	v, err := client.Resolve(context.Background(), "222", "")

	require.NoError(t, err)
	assert.Equal(t, "2", v.ID)
}

func TestResolve_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{}`)
	})
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"data":[]}`)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Resolve(context.Background(), "XYZ", "1")

	var nf *apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestResolve_NetworkFailureSkipsFallback(t *testing.T) {
	searched := false
	mux := http.NewServeMux()
	mux.HandleFunc("/estoque/caixa/scan/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 503, `{"message":"manutenção"}`)
	})
	mux.HandleFunc("/produtos", func(w http.ResponseWriter, r *http.Request) {
		searched = true
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Resolve(context.Background(), "ABC", "1")

	var netErr *apperror.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.False(t, searched)
}

func TestResolve_ConnectionRefused(t *testing.T) {
	client, srv := newTestClient(t, http.NewServeMux())
	srv.Close()

	_, err := client.Resolve(context.Background(), "ABC", "1")

	var netErr *apperror.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestResolve_EmptyCode(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())

	_, err := client.Resolve(context.Background(), "   ", "1")

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// --- Token ---

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "caixa",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	raw, err := tok.SignedString([]byte("segredo"))
	require.NoError(t, err)
	return raw
}

func TestClient_ExpiredTokenFailsFast(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), func(o *Options) { o.Token = signedToken(t, time.Now().Add(-time.Hour)) })

	_, err := client.ListDepots(context.Background())

	var unauth *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauth)
	assert.False(t, called)
}

func TestClient_ValidTokenIsSent(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+tok, r.Header.Get("Authorization"))
		writeJSON(w, 200, `[]`)
	}), func(o *Options) { o.Token = tok })

	_, err := client.ListDepots(context.Background())
	assert.NoError(t, err)
}

func TestClient_BackendUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, `{"message":"Unauthenticated."}`)
	}))

	_, err := client.ListDepots(context.Background())

	var unauth *apperror.UnauthorizedError
	assert.ErrorAs(t, err, &unauth)
}

// --- Depósitos ---

func TestListDepots_UsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)

	hits := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(w, 200, `{"data":[{"id":1,"nome":"Loja"},{"id":"2","nome":"Galpão"},{"nome":"sem id"}]}`)
	}), func(o *Options) {
		o.Cache = rc
		o.DepotTTL = time.Minute
	})

	first, err := client.ListDepots(context.Background())
	require.NoError(t, err)
	second, err := client.ListDepots(context.Background())
	require.NoError(t, err)

	expected := []domain.Depot{{ID: "1", Name: "Loja"}, {ID: "2", Name: "Galpão"}}
	assert.Equal(t, expected, first)
	assert.Equal(t, expected, second)
	assert.Equal(t, 1, hits)
	assert.True(t, mr.Exists(depotCacheKey))
}

func TestListDepots_WithoutCache(t *testing.T) {
	hits := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(w, 200, `[{"id":5,"nome":"Depósito"}]`)
	}))

	_, _ = client.ListDepots(context.Background())
	_, _ = client.ListDepots(context.Background())

	assert.Equal(t, 2, hits)
}

// --- Submit ---

func captureSubmit(t *testing.T, status int, body string, captured *map[string]interface{}, path *string, key *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*path = r.URL.Path
		*key = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		writeJSON(w, status, body)
	})
}

func TestSubmit_NormalCaixa(t *testing.T) {
	var payload map[string]interface{}
	var path, key string
	client, _ := newTestClient(t, captureSubmit(t, 200, `{"mensagem":"Saída registrada."}`, &payload, &path, &key))

	res, err := client.Submit(context.Background(), domain.BatchRequest{
		Mode:          domain.ModeNormal,
		OperationType: domain.OperationSaida,
		DepotID:       "3",
		Items:         []domain.BatchItem{{VariationID: "42", Quantity: 5}},
	}, "chave-1")

	require.NoError(t, err)
	assert.Equal(t, "Saída registrada.", res.Message)
	assert.Equal(t, pathCaixaFinalizar, path)
	assert.Equal(t, "chave-1", key)
	assert.Equal(t, "saida", payload["tipo"])
	assert.Equal(t, "3", payload["deposito_id"])
	itens := payload["itens"].([]interface{})
	require.Len(t, itens, 1)
	assert.Equal(t, map[string]interface{}{"variacao_id": "42", "quantidade": float64(5)}, itens[0])
}

func TestSubmit_TransferCaixa(t *testing.T) {
	var payload map[string]interface{}
	var path, key string
	client, _ := newTestClient(t, captureSubmit(t, 201,
		`{"mensagem":"Transferência criada","transferencia_pdf":"/transferencias/9/pdf","transferencia_id":9}`,
		&payload, &path, &key))

	res, err := client.Submit(context.Background(), domain.BatchRequest{
		Mode:          domain.ModeTransfer,
		SourceDepotID: "1",
		DestDepotID:   "2",
		Items:         []domain.BatchItem{{VariationID: "42", Quantity: 1}},
	}, "chave-2")

	require.NoError(t, err)
	assert.Equal(t, pathCaixaTransferir, path)
	assert.Equal(t, "1", payload["deposito_origem_id"])
	assert.Equal(t, "2", payload["deposito_destino_id"])
	assert.Equal(t, "/transferencias/9/pdf", res.DocumentURL)
	assert.Equal(t, "9", res.TransferID)
}

func TestSubmit_LoteStyle(t *testing.T) {
	var payload map[string]interface{}
	var path, key string
	client, _ := newTestClient(t, captureSubmit(t, 200, `{}`, &payload, &path, &key),
		func(o *Options) { o.SubmitStyle = StyleLote })

	res, err := client.Submit(context.Background(), domain.BatchRequest{
		Mode:          domain.ModeTransfer,
		SourceDepotID: "1",
		DestDepotID:   "2",
		Items:         []domain.BatchItem{{VariationID: "42", Quantity: 1}},
	}, "chave-3")

	require.NoError(t, err)
	assert.Equal(t, pathLote, path)
	assert.Equal(t, "transferencia", payload["tipo"])
	assert.NotContains(t, payload, "deposito_id")
	assert.Equal(t, "Movimentação registrada.", res.Message)
}

func TestSubmit_Rejected(t *testing.T) {
	var payload map[string]interface{}
	var path, key string
	client, _ := newTestClient(t, captureSubmit(t, 422,
		`{"message":"Dados inválidos","errors":{"itens.0.quantidade":["Saldo insuficiente"],"deposito_id":"Depósito inativo"}}`,
		&payload, &path, &key))

	_, err := client.Submit(context.Background(), domain.BatchRequest{
		Mode:          domain.ModeNormal,
		OperationType: domain.OperationSaida,
		DepotID:       "3",
		Items:         []domain.BatchItem{{VariationID: "42", Quantity: 50}},
	}, "chave-4")

	var rejected *apperror.SubmitRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 422, rejected.Status)
	assert.Equal(t, []string{"Depósito inativo", "Saldo insuficiente"}, rejected.Report.Messages)
}

func TestSubmit_SuccessFalseIsRejection(t *testing.T) {
	var payload map[string]interface{}
	var path, key string
	client, _ := newTestClient(t, captureSubmit(t, 200, `{"sucesso":false,"mensagem":"Caixa fechado"}`, &payload, &path, &key))

	_, err := client.Submit(context.Background(), domain.BatchRequest{
		Mode:          domain.ModeNormal,
		OperationType: domain.OperationEntrada,
		DepotID:       "3",
		Items:         []domain.BatchItem{{VariationID: "42", Quantity: 1}},
	}, "chave-5")

	var rejected *apperror.SubmitRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, []string{"Caixa fechado"}, rejected.Report.Messages)
}

func TestSubmit_EmptyBatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("não deveria chamar o backend")
	}))

	_, err := client.Submit(context.Background(), domain.BatchRequest{Mode: domain.ModeNormal}, "k")

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// --- Documento ---

// minimalPDF monta um PDF de uma página com a tabela xref correta.
func minimalPDF() []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestFetchDocument_RelativeURL(t *testing.T) {
	doc := minimalPDF()
	mux := http.NewServeMux()
	mux.HandleFunc("/transferencias/9/pdf", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(doc)
	})
	client, _ := newTestClient(t, mux)

	got, err := client.FetchDocument(context.Background(), "/transferencias/9/pdf")

	require.NoError(t, err)
	assert.Equal(t, 1, got.Pages)
	assert.Equal(t, doc, got.Data)
}

func TestFetchDocument_AbsoluteURL(t *testing.T) {
	doc := minimalPDF()
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(doc)
	}))
	t.Cleanup(storage.Close)
	client, _ := newTestClient(t, http.NewServeMux())

	got, err := client.FetchDocument(context.Background(), storage.URL+"/arquivo.pdf")

	require.NoError(t, err)
	assert.Equal(t, 1, got.Pages)
}

func TestFetchDocument_NotAPDF(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>login</html>")
	}))

	_, err := client.FetchDocument(context.Background(), "/doc")

	var netErr *apperror.NetworkError
	assert.ErrorAs(t, err, &netErr)
}
