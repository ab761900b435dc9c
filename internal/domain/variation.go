package domain

// Variation é uma variação vendável (SKU) resolvida pelo backend a partir de um
// código lido ou de uma busca textual.
type Variation struct {
	ID         string `json:"variacaoId"`
	Code       string `json:"codigo"`
	Reference  string `json:"referencia"`
	Name       string `json:"nome"`
	KnownStock int    `json:"estoque"` // Saldo no depósito consultado (origem na transferência)
}

// LineItem converte a variação resolvida em uma linha do ledger com a quantidade informada.
func (v Variation) LineItem(quantity int) LineItem {
	return LineItem{
		VariationID: v.ID,
		Code:        v.Code,
		Reference:   v.Reference,
		Name:        v.Name,
		Quantity:    quantity,
		KnownStock:  v.KnownStock,
	}
}
