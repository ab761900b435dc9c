package domain

// ErrorResponse é a estrutura padronizada para respostas de erro na API da estação.
// @Description Estrutura padronizada para respostas de erro na API da estação.
type ErrorResponse struct {
	Code       int         `json:"code" example:"422"`
	Category   string      `json:"category" example:"INSUFFICIENT_STOCK"`
	Message    string      `json:"message" example:"Estoque insuficiente para CAM-P-AZ: disponível 2, solicitado 3 (faltam 1)."`
	Messages   []string    `json:"mensagens,omitempty"`
	Candidates []Variation `json:"candidatos,omitempty"`
}
