package domain

// SessionView é o estado da sessão exposto à interface da estação.
type SessionView struct {
	SessionID   string          `json:"sessaoId"`
	State       SessionState    `json:"estado"`
	Settings    SessionSettings `json:"configuracao"`
	Items       []LineItem      `json:"itens"`
	Lines       int             `json:"linhas"`
	TotalUnits  int             `json:"totalUnidades"`
	LastScanned string          `json:"ultimaLeitura,omitempty"`
	UndoDepth   int             `json:"desfazerDisponivel"`
	Depots      []Depot         `json:"depositos"`
}

// SettingsPatch é uma alteração parcial de configuração (campos nil são mantidos).
type SettingsPatch struct {
	Mode                   *Mode          `json:"modo,omitempty"`
	OperationType          *OperationType `json:"tipo,omitempty"`
	DepotID                *string        `json:"depositoId,omitempty"`
	SourceDepotID          *string        `json:"origemId,omitempty"`
	DestDepotID            *string        `json:"destinoId,omitempty"`
	QuickQuantity          *int           `json:"qtdRapida,omitempty"`
	AutoResetQuickQuantity *bool          `json:"autoResetQtd,omitempty"`
	CameraEnabled          *bool          `json:"cameraAtiva,omitempty"`
}

// ScanResult descreve o efeito de uma leitura aceita.
type ScanResult struct {
	Ignored  bool     `json:"ignorado,omitempty"` // token vazio: nada foi feito
	Item     LineItem `json:"item"`
	Added    int      `json:"adicionado"`
	Quantity int      `json:"quantidadeLinha"`
}

// BulkLineError é uma linha da colagem em lote que não entrou no ledger.
type BulkLineError struct {
	Line     int    `json:"linha"`
	Code     string `json:"codigo"`
	Category string `json:"categoria"`
	Message  string `json:"mensagem"`
}

// BulkResult resume o processamento de uma colagem em lote.
type BulkResult struct {
	Added  []ScanResult    `json:"adicionados"`
	Failed []BulkLineError `json:"falhas"`
}

// TransferDocument é o PDF de transferência baixado e verificado.
type TransferDocument struct {
	Data  []byte
	Pages int
}
