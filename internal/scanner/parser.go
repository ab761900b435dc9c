// Package scanner interpreta a entrada bruta dos leitores (keyboard-wedge, câmera,
// colagem em lote) em pares quantidade/código e mapeia as teclas de atalho do operador.
package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"gocaixa/internal/domain"
)

// Source identifica a origem de um token lido.
type Source string

const (
	SourceWedge  Source = "leitor"
	SourceCamera Source = "camera"
	SourcePaste  Source = "colagem"
	SourceManual Source = "manual"
)

// Token é o resultado da interpretação de uma leitura.
type Token struct {
	Quantity int
	Code     string
}

// O prefixo tem precedência: "3x100" é 3 unidades do código "100".
var (
	prefixPattern = regexp.MustCompile(`(?i)^(\d{1,5})\s*[x*]\s*(.+)$`)
	suffixPattern = regexp.MustCompile(`(?i)^(.+?)\s*[x*]\s*(\d{1,5})$`)
)

// ParseToken interpreta um token bruto. Retorna ok=false para entrada vazia.
func ParseToken(raw string) (Token, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Token{}, false
	}

	if m := prefixPattern.FindStringSubmatch(text); m != nil {
		return Token{Quantity: parseQuantity(m[1]), Code: strings.TrimSpace(m[2])}, true
	}
	if m := suffixPattern.FindStringSubmatch(text); m != nil {
		return Token{Quantity: parseQuantity(m[2]), Code: strings.TrimSpace(m[1])}, true
	}
	return Token{Quantity: 1, Code: text}, true
}

func parseQuantity(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return domain.MinQuantity
	}
	return ClampQuantity(n)
}

// ClampQuantity limita uma quantidade informada diretamente a [1, 99999].
func ClampQuantity(n int) int {
	if n < domain.MinQuantity {
		return domain.MinQuantity
	}
	if n > domain.MaxQuantity {
		return domain.MaxQuantity
	}
	return n
}

// QuickQuantity é o multiplicador padrão aplicado a leituras sem quantidade própria.
type QuickQuantity struct {
	Value     int
	AutoReset bool
}

// ApplyQuickQuantity substitui quantidade 1 pela quantidade rápida (> 1).
// Com AutoReset ativo, a quantidade rápida volta a 1 logo após a substituição.
// Retorna o token efetivo e o novo estado da quantidade rápida.
func ApplyQuickQuantity(tok Token, qq QuickQuantity) (Token, QuickQuantity) {
	if tok.Quantity != 1 || qq.Value <= 1 {
		return tok, qq
	}
	tok.Quantity = ClampQuantity(qq.Value)
	if qq.AutoReset {
		qq.Value = 1
	}
	return tok, qq
}

// SplitBulk separa um texto colado em linhas e interpreta cada uma de forma independente.
// Linhas vazias são descartadas.
func SplitBulk(text string) []Token {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	tokens := make([]Token, 0, len(lines))
	for _, line := range lines {
		if tok, ok := ParseToken(line); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
