package domain

// BatchItem é uma linha do lote enviado ao backend.
type BatchItem struct {
	VariationID string `json:"variacao_id"`
	Quantity    int    `json:"quantidade"`
}

// BatchRequest é a movimentação em lote montada a partir do ledger.
// No modo normal usa OperationType/DepotID; na transferência, Source/Dest.
type BatchRequest struct {
	Mode          Mode
	OperationType OperationType
	DepotID       string
	SourceDepotID string
	DestDepotID   string
	Items         []BatchItem
}

// BatchResult é a resposta de sucesso da finalização.
type BatchResult struct {
	Message      string `json:"mensagem"`
	DocumentURL  string `json:"transferencia_pdf,omitempty"`
	TransferID   string `json:"transferencia_id,omitempty"`
	DocumentPath string `json:"documento,omitempty"` // Caminho local do PDF baixado, se houver
}

// ErrorReport é a forma normalizada dos erros estruturados devolvidos pelo backend.
type ErrorReport struct {
	Messages []string `json:"mensagens"`
}

// Empty indica se não há mensagens.
func (r ErrorReport) Empty() bool {
	return len(r.Messages) == 0
}
