package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken indica que a credencial não é um JWT (ex.: token pessoal "1|abc...").
var ErrOpaqueToken = errors.New("token não é um JWT")

// Claims são as informações lidas do token de acesso ao backend.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero quando o token não declara expiração
}

// Expired indica se o token expirou em relação a now, com folga de skew.
func (c Claims) Expired(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(c.ExpiresAt)
}

// Inspector lê as claims do token do backend sem validar a assinatura: a estação não
// conhece a chave, quem valida é o backend. Serve apenas para falhar cedo com um
// token vencido em vez de gastar uma requisição.
type Inspector struct {
	parser *jwt.Parser
}

// NewInspector cria um novo Inspector.
func NewInspector() *Inspector {
	return &Inspector{parser: jwt.NewParser()}
}

// Inspect extrai subject e expiração. Retorna ErrOpaqueToken para credenciais que não
// têm o formato header.payload.signature.
func (i *Inspector) Inspect(raw string) (Claims, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	if strings.Count(raw, ".") != 2 {
		return Claims{}, ErrOpaqueToken
	}

	registered := &jwt.RegisteredClaims{}
	if _, _, err := i.parser.ParseUnverified(raw, registered); err != nil {
		return Claims{}, fmt.Errorf("token inválido: %w", err)
	}

	claims := Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
