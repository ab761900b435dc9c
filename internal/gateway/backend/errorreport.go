package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gocaixa/internal/domain"
)

const maxRawErrorLen = 300

// NormalizeErrorBody converte o corpo de erro do backend em uma lista de mensagens.
// Aceita `erros` (lista ou mapa), `errors` (mapa campo→lista|string, ou lista) e
// `message`/`mensagem`/`error` (string). A mensagem única só é usada quando não há
// lista nem mapa. Corpo que não é JSON vira uma mensagem com o texto cru.
func NormalizeErrorBody(body []byte, status int) domain.ErrorReport {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return fallbackReport(status)
		}
		if len(text) > maxRawErrorLen {
			text = truncate(text, maxRawErrorLen) + "…"
		}
		return domain.ErrorReport{Messages: []string{text}}
	}

	var messages []string
	for _, key := range []string{"erros", "errors"} {
		if v, ok := payload[key]; ok {
			messages = append(messages, flatten(v)...)
		}
	}
	if len(messages) == 0 {
		for _, key := range []string{"mensagem", "message", "error"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				messages = append(messages, strings.TrimSpace(s))
				break
			}
		}
	}
	if len(messages) == 0 {
		return fallbackReport(status)
	}
	return domain.ErrorReport{Messages: dedupe(messages)}
}

func fallbackReport(status int) domain.ErrorReport {
	return domain.ErrorReport{Messages: []string{fmt.Sprintf("O backend recusou a operação (HTTP %d).", status)}}
}

// flatten percorre strings, listas e mapas. Mapas com "mensagem"/"message" contam
// como uma mensagem; os demais são percorridos em ordem de chave.
func flatten(v interface{}) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []interface{}:
		var out []string
		for _, item := range t {
			out = append(out, flatten(item)...)
		}
		return out
	case map[string]interface{}:
		for _, key := range []string{"mensagem", "message"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return []string{strings.TrimSpace(s)}
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var out []string
		for _, k := range keys {
			out = append(out, flatten(t[k])...)
		}
		return out
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// truncate corta text em no máximo n bytes sem partir um caractere UTF-8.
func truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
