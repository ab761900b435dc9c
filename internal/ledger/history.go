package ledger

import "gocaixa/internal/domain"

// History é a pilha de deltas das leituras. A interface expõe o desfazer da última
// ação; como pilha, suporta desfazer em vários níveis.
type History struct {
	entries []domain.HistoryEntry
}

// NewHistory cria uma pilha vazia.
func NewHistory() *History {
	return &History{}
}

// Push registra uma leitura aplicada ao ledger.
func (h *History) Push(entry domain.HistoryEntry) {
	h.entries = append(h.entries, entry)
}

// Pop remove e devolve a entrada mais recente.
func (h *History) Pop() (domain.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

// Peek devolve a entrada mais recente sem removê-la.
func (h *History) Peek() (domain.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Len é o tamanho da pilha.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear esvazia a pilha.
func (h *History) Clear() {
	h.entries = nil
}
