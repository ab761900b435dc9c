package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gocaixa/internal/domain"
)

// flexString aceita string ou número no JSON (IDs numéricos do backend).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt aceita número inteiro, decimal ("12.000") ou string numérica.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return err
	}
	*f = flexInt(math.Floor(v))
	return nil
}

// wireVariation cobre as variações de nome de campo usadas pelos endpoints de
// leitura e de busca.
type wireVariation struct {
	ID          flexString `json:"id"`
	VariationID flexString `json:"variacao_id"`
	Code        string     `json:"codigo"`
	Barcode     string     `json:"codigo_barras"`
	Reference   string     `json:"referencia"`
	Name        string     `json:"nome"`
	FullName    string     `json:"nome_completo"`
	Description string     `json:"descricao"`
	Stock       *flexInt   `json:"estoque"`
	StockNow    *flexInt   `json:"estoque_atual"`
	Quantity    *flexInt   `json:"quantidade"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(values ...*flexInt) int {
	for _, v := range values {
		if v != nil {
			return int(*v)
		}
	}
	return 0
}

// toDomain converte a variação; productName/productRef completam campos ausentes
// quando a variação vem aninhada em um produto da busca.
func (w wireVariation) toDomain(productName, productRef string) domain.Variation {
	name := firstNonEmpty(w.FullName, w.Name)
	if name == "" {
		name = productName
		if w.Description != "" {
			name = strings.TrimSpace(productName + " - " + w.Description)
		}
	}
	return domain.Variation{
		ID:         firstNonEmpty(string(w.VariationID), string(w.ID)),
		Code:       firstNonEmpty(w.Barcode, w.Code),
		Reference:  firstNonEmpty(w.Reference, productRef),
		Name:       name,
		KnownStock: firstInt(w.Stock, w.StockNow, w.Quantity),
	}
}

// scanResponse é o corpo de GET /estoque/caixa/scan/<code>.
type scanResponse struct {
	Success bool          `json:"sucesso"`
	Data    wireVariation `json:"data"`
	Message string        `json:"message"`
}

// wireProduct é um produto da busca /produtos com as variações aninhadas.
type wireProduct struct {
	ID         flexString      `json:"id"`
	Name       string          `json:"nome"`
	Reference  string          `json:"referencia"`
	Variations []wireVariation `json:"variacoes"`
}

type wireDepot struct {
	ID   flexString `json:"id"`
	Name string     `json:"nome"`
}

// decodeList aceita {"data": [...]} ou um array direto.
func decodeList(body []byte, out interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		return json.Unmarshal(body, out)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

// submitResponse é o corpo de sucesso da finalização.
type submitResponse struct {
	Success    *bool      `json:"sucesso"`
	Mensagem   string     `json:"mensagem"`
	Message    string     `json:"message"`
	Document   string     `json:"transferencia_pdf"`
	TransferID flexString `json:"transferencia_id"`
}
