package domain

// Depot representa um depósito (local de estoque) disponível para a estação.
type Depot struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}
