package domain

// Limites de quantidade aceitos em qualquer entrada direta.
const (
	MinQuantity = 1
	MaxQuantity = 99999
)

// LineItem é uma linha pendente do ledger, única por VariationID.
type LineItem struct {
	VariationID string `json:"variacaoId"`
	Code        string `json:"codigo"`
	Reference   string `json:"referencia"`
	Name        string `json:"nome"`
	Quantity    int    `json:"quantidade"`
	// KnownStock é apenas consultivo: o backend revalida o saldo na finalização.
	KnownStock int `json:"estoque"`
}

// HistoryEntry registra o delta líquido de uma leitura, usado pelo desfazer.
// Quando a leitura incrementou uma linha existente, PrevKnownStock guarda o saldo
// conhecido que a linha tinha antes.
type HistoryEntry struct {
	VariationID    string
	Delta          int
	Incremented    bool
	PrevKnownStock int
}

// Mode define se o lote movimenta um depósito ou transfere entre dois.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeTransfer Mode = "transfer"
)

// Valid indica se o modo é conhecido.
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeTransfer
}

// OperationType é o sentido da movimentação no modo normal.
type OperationType string

const (
	OperationEntrada OperationType = "entrada"
	OperationSaida   OperationType = "saida"
)

// Valid indica se o tipo de operação é conhecido.
func (o OperationType) Valid() bool {
	return o == OperationEntrada || o == OperationSaida
}

// SessionSettings são as preferências da sessão de leitura, espelhadas a cada alteração.
type SessionSettings struct {
	Mode                   Mode          `json:"modo"`
	OperationType          OperationType `json:"tipo"`
	DepotID                string        `json:"depositoId"`
	SourceDepotID          string        `json:"origemId"`
	DestDepotID            string        `json:"destinoId"`
	QuickQuantity          int           `json:"qtdRapida"`
	AutoResetQuickQuantity bool          `json:"autoResetQtd"`
	CameraEnabled          bool          `json:"cameraAtiva"`
}

// DefaultSettings retorna a configuração inicial de uma sessão sem snapshot.
func DefaultSettings() SessionSettings {
	return SessionSettings{
		Mode:          ModeNormal,
		OperationType: OperationEntrada,
		QuickQuantity: 1,
	}
}

// ConsumesStock indica se o contexto atual retira saldo (saída ou transferência).
func (s SessionSettings) ConsumesStock() bool {
	return s.Mode == ModeTransfer || s.OperationType == OperationSaida
}

// LookupDepotID é o depósito cujo saldo é consultado nas leituras.
func (s SessionSettings) LookupDepotID() string {
	if s.Mode == ModeTransfer {
		return s.SourceDepotID
	}
	return s.DepotID
}

// SessionState é o estado da sessão como um todo.
type SessionState string

const (
	StateEmpty      SessionState = "vazio"
	StatePending    SessionState = "pendente"
	StateSubmitting SessionState = "enviando"
)

// Snapshot é o formato gravado no espelho local (um único slot, last-write-wins).
type Snapshot struct {
	Items         []LineItem    `json:"itens"`
	OperationType OperationType `json:"tipo"`
	DepotID       string        `json:"depositoId"`
	SourceDepotID string        `json:"origemId"`
	DestDepotID   string        `json:"destinoId"`
	Mode          Mode          `json:"mode"`
	QuickQuantity int           `json:"qtdRapida"`
	AutoReset     bool          `json:"autoResetQtd"`
}

// NewSnapshot monta o snapshot a partir das linhas e configurações atuais.
func NewSnapshot(items []LineItem, s SessionSettings) Snapshot {
	if items == nil {
		items = []LineItem{}
	}
	return Snapshot{
		Items:         items,
		OperationType: s.OperationType,
		DepotID:       s.DepotID,
		SourceDepotID: s.SourceDepotID,
		DestDepotID:   s.DestDepotID,
		Mode:          s.Mode,
		QuickQuantity: s.QuickQuantity,
		AutoReset:     s.AutoResetQuickQuantity,
	}
}

// Settings extrai as configurações persistidas do snapshot, completando valores ausentes.
func (s Snapshot) Settings() SessionSettings {
	out := DefaultSettings()
	if s.Mode.Valid() {
		out.Mode = s.Mode
	}
	if s.OperationType.Valid() {
		out.OperationType = s.OperationType
	}
	out.DepotID = s.DepotID
	out.SourceDepotID = s.SourceDepotID
	out.DestDepotID = s.DestDepotID
	if s.QuickQuantity >= MinQuantity {
		out.QuickQuantity = s.QuickQuantity
	}
	out.AutoResetQuickQuantity = s.AutoReset
	return out
}
