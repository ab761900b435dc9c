// Package ledger mantém as linhas pendentes de uma sessão de leitura e o histórico
// usado pelo desfazer. Não é seguro para uso concorrente: o dono (a sessão) serializa
// o acesso.
package ledger

import "gocaixa/internal/domain"

// Ledger é o conjunto ordenado de linhas pendentes, no máximo uma por variação.
// A ordem de inserção é a ordem de listagem.
type Ledger struct {
	order []string
	lines map[string]*domain.LineItem
}

// New cria um ledger vazio.
func New() *Ledger {
	return &Ledger{lines: make(map[string]*domain.LineItem)}
}

// AddOrIncrement soma quantity à linha da variação ou cria uma nova linha.
// Devolve a quantidade resultante da linha.
func (l *Ledger) AddOrIncrement(item domain.LineItem, quantity int) int {
	if line, ok := l.lines[item.VariationID]; ok {
		line.Quantity += quantity
		line.KnownStock = item.KnownStock
		return line.Quantity
	}

	item.Quantity = quantity
	l.lines[item.VariationID] = &item
	l.order = append(l.order, item.VariationID)
	return quantity
}

// Alter ajusta a linha por delta. Se o resultado for ≤ 0 a linha é removida.
// Devolve false se a variação não está no ledger.
func (l *Ledger) Alter(variationID string, delta int) bool {
	line, ok := l.lines[variationID]
	if !ok {
		return false
	}
	line.Quantity += delta
	if line.Quantity <= 0 {
		l.Remove(variationID)
	}
	return true
}

// Revert desfaz uma entrada do histórico: subtrai o delta e, se a leitura tinha
// incrementado uma linha existente, devolve o saldo conhecido anterior.
// Devolve false se a variação não está mais no ledger.
func (l *Ledger) Revert(entry domain.HistoryEntry) bool {
	line, ok := l.lines[entry.VariationID]
	if !ok {
		return false
	}
	if entry.Incremented {
		line.KnownStock = entry.PrevKnownStock
	}
	return l.Alter(entry.VariationID, -entry.Delta)
}

// Set define a quantidade absoluta, limitada a [1, 99999]. Nunca remove a linha.
func (l *Ledger) Set(variationID string, value int) bool {
	line, ok := l.lines[variationID]
	if !ok {
		return false
	}
	switch {
	case value < domain.MinQuantity:
		value = domain.MinQuantity
	case value > domain.MaxQuantity:
		value = domain.MaxQuantity
	}
	line.Quantity = value
	return true
}

// Remove exclui a linha incondicionalmente.
func (l *Ledger) Remove(variationID string) bool {
	if _, ok := l.lines[variationID]; !ok {
		return false
	}
	delete(l.lines, variationID)
	for i, id := range l.order {
		if id == variationID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear esvazia o ledger.
func (l *Ledger) Clear() {
	l.order = nil
	l.lines = make(map[string]*domain.LineItem)
}

// Get devolve uma cópia da linha.
func (l *Ledger) Get(variationID string) (domain.LineItem, bool) {
	line, ok := l.lines[variationID]
	if !ok {
		return domain.LineItem{}, false
	}
	return *line, true
}

// Quantity devolve a quantidade pendente da variação (0 se ausente).
func (l *Ledger) Quantity(variationID string) int {
	if line, ok := l.lines[variationID]; ok {
		return line.Quantity
	}
	return 0
}

// Items devolve cópias das linhas na ordem de inserção.
func (l *Ledger) Items() []domain.LineItem {
	out := make([]domain.LineItem, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.lines[id])
	}
	return out
}

// Len é o número de linhas.
func (l *Ledger) Len() int {
	return len(l.order)
}

// TotalUnits soma as quantidades de todas as linhas.
func (l *Ledger) TotalUnits() int {
	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

// Restore substitui o conteúdo pelas linhas informadas (snapshot do espelho).
// Linhas sem variação ou com quantidade inválida são descartadas; IDs repetidos
// são somados.
func (l *Ledger) Restore(items []domain.LineItem) {
	l.Clear()
	for _, it := range items {
		if it.VariationID == "" || it.Quantity < domain.MinQuantity {
			continue
		}
		l.AddOrIncrement(it, it.Quantity)
	}
}

// BatchItems converte as linhas no formato de envio.
func (l *Ledger) BatchItems() []domain.BatchItem {
	out := make([]domain.BatchItem, 0, len(l.order))
	for _, id := range l.order {
		line := l.lines[id]
		out = append(out, domain.BatchItem{VariationID: line.VariationID, Quantity: line.Quantity})
	}
	return out
}
