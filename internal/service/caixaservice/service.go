// Package caixaservice é o controlador da sessão de leitura de estoque: recebe as
// leituras, consulta o backend, aplica a política de saldo, mantém o ledger e o
// histórico, espelha o estado e envia o lote finalizado.
package caixaservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/ledger"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/report"
	"gocaixa/internal/scanner"
)

// Gateway define o que a sessão espera do backend de inventário.
type Gateway interface {
	Resolve(ctx context.Context, code, depotID string) (domain.Variation, error)
	Search(ctx context.Context, query, depotID string) ([]domain.Variation, error)
	ListDepots(ctx context.Context) ([]domain.Depot, error)
	Submit(ctx context.Context, req domain.BatchRequest, idempotencyKey string) (domain.BatchResult, error)
	FetchDocument(ctx context.Context, location string) (domain.TransferDocument, error)
}

// SnapshotRepository define o contrato do espelho de sessão (slot único).
type SnapshotRepository interface {
	Load(ctx context.Context, key string) (domain.Snapshot, error)
	Save(ctx context.Context, key string, snap domain.Snapshot) error
	Delete(ctx context.Context, key string) error
}

// DocumentRepository guarda o documento de transferência baixado.
type DocumentRepository interface {
	Save(ctx context.Context, transferID string, data []byte) (string, error)
}

// Cue é o aviso sonoro da estação.
type Cue interface {
	Success()
	Failure()
}

type nopCue struct{}

func (nopCue) Success() {}
func (nopCue) Failure() {}

// Options agrupa a configuração da sessão.
type Options struct {
	StorageKey     string
	MirrorTimeout  time.Duration
	FetchDocuments bool
	Cue            Cue
}

// Service é a sessão de leitura da estação. Todas as mutações passam pelo mutex;
// chamadas de rede nunca o seguram.
type Service struct {
	gateway Gateway
	mirror  *mirrorWriter
	docs    DocumentRepository
	cue     Cue
	logger  logger.Logger
	opts    Options

	newKey func() string
	now    func() time.Time

	mu          sync.Mutex
	sessionID   string
	ledger      *ledger.Ledger
	history     *ledger.History
	settings    domain.SessionSettings
	depots      []domain.Depot
	candidates  map[string]domain.Variation
	lastScanned string
	submitting  bool
	closed      bool
	// epoch muda quando o conteúdo da sessão é descartado (limpar, envio, fechamento);
	// consultas iniciadas em outra época são ignoradas.
	epoch uint64
}

// NewService cria a sessão. docs pode ser nil (documentos não são salvos).
func NewService(gw Gateway, snapshots SnapshotRepository, docs DocumentRepository, opts Options, logger logger.Logger) *Service {
	if opts.Cue == nil {
		opts.Cue = nopCue{}
	}
	if opts.MirrorTimeout <= 0 {
		opts.MirrorTimeout = 2 * time.Second
	}
	return &Service{
		gateway:    gw,
		mirror:     newMirrorWriter(snapshots, opts.StorageKey, opts.MirrorTimeout, logger),
		docs:       docs,
		cue:        opts.Cue,
		logger:     logger,
		opts:       opts,
		newKey:     uuid.NewString,
		now:        time.Now,
		sessionID:  uuid.NewString(),
		ledger:     ledger.New(),
		history:    ledger.NewHistory(),
		settings:   domain.DefaultSettings(),
		candidates: make(map[string]domain.Variation),
	}
}

// Start carrega os depósitos e restaura o snapshot do espelho, se houver.
// Sem snapshot, os depósitos padrão vêm da primeira opção disponível.
func (s *Service) Start(ctx context.Context) error {
	depots, err := s.gateway.ListDepots(ctx)
	if err != nil {
		s.logger.Warn("Não foi possível carregar os depósitos.", map[string]interface{}{"error": err.Error()})
		depots = nil
	}

	snap, loadErr := s.mirror.repo.Load(ctx, s.opts.StorageKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.depots = depots
	var notFound *apperror.NotFoundError
	switch {
	case loadErr == nil:
		s.ledger.Restore(snap.Items)
		s.settings = snap.Settings()
		s.logger.Info("Sessão restaurada do espelho.", map[string]interface{}{
			"session_id": s.sessionID,
			"itens":      s.ledger.Len(),
			"modo":       s.settings.Mode,
		})
	case errors.As(loadErr, &notFound):
		s.settings = domain.DefaultSettings()
		s.logger.Info("Nenhum snapshot encontrado. Sessão iniciada vazia.", map[string]interface{}{"session_id": s.sessionID})
	default:
		s.settings = domain.DefaultSettings()
		s.logger.Warn("Falha ao ler o espelho da sessão (ignorada).", map[string]interface{}{"error": loadErr.Error()})
	}
	s.applyDefaultDepotsLocked()
	return nil
}

func (s *Service) applyDefaultDepotsLocked() {
	if len(s.depots) == 0 {
		return
	}
	first := s.depots[0].ID
	if s.settings.DepotID == "" {
		s.settings.DepotID = first
	}
	if s.settings.SourceDepotID == "" {
		s.settings.SourceDepotID = first
	}
}

// --- Leituras ---

// Scan interpreta um token lido, resolve o código no backend e adiciona a linha.
// Token vazio é ignorado sem erro.
func (s *Service) Scan(ctx context.Context, raw string, source scanner.Source) (domain.ScanResult, error) {
	tok, ok := scanner.ParseToken(raw)
	if !ok {
		return domain.ScanResult{Ignored: true}, nil
	}
	res, err := s.scanToken(ctx, tok)
	if err != nil {
		s.cue.Failure()
		s.logger.Warn("Leitura descartada.", map[string]interface{}{
			"codigo": tok.Code,
			"origem": source,
			"error":  err.Error(),
		})
		return domain.ScanResult{}, err
	}
	s.cue.Success()
	s.logger.Debug("Leitura registrada.", map[string]interface{}{
		"codigo":     tok.Code,
		"origem":     source,
		"adicionado": res.Added,
		"quantidade": res.Quantity,
	})
	return res, nil
}

// BulkPaste processa um texto colado, uma leitura por linha. Cada linha é
// independente: falhas não impedem as demais.
func (s *Service) BulkPaste(ctx context.Context, text string) (domain.BulkResult, error) {
	tokens := scanner.SplitBulk(text)
	if len(tokens) == 0 {
		return domain.BulkResult{}, apperror.NewValidationError("Nenhum código informado.")
	}

	out := domain.BulkResult{Added: []domain.ScanResult{}, Failed: []domain.BulkLineError{}}
	for i, tok := range tokens {
		res, err := s.scanToken(ctx, tok)
		if err != nil {
			_, category, _ := apperror.MapToHTTPStatus(err)
			out.Failed = append(out.Failed, domain.BulkLineError{Line: i + 1, Code: tok.Code, Category: category, Message: err.Error()})
			continue
		}
		out.Added = append(out.Added, res)
	}

	if len(out.Failed) > 0 {
		s.cue.Failure()
	} else {
		s.cue.Success()
	}
	s.logger.Info("Colagem em lote processada.", map[string]interface{}{
		"linhas":      len(tokens),
		"adicionadas": len(out.Added),
		"falhas":      len(out.Failed),
	})
	return out, nil
}

// scanToken aplica a quantidade rápida, consulta o backend fora do lock e só aplica
// o resultado se a sessão não mudou de época nem de depósito durante a consulta.
// Se a leitura não entra no ledger, a quantidade rápida consumida é devolvida.
func (s *Service) scanToken(ctx context.Context, tok scanner.Token) (domain.ScanResult, error) {
	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.ScanResult{}, err
	}
	depotID := s.settings.LookupDepotID()
	if depotID == "" {
		s.mu.Unlock()
		return domain.ScanResult{}, apperror.NewValidationError("Selecione o depósito antes de ler.")
	}
	previous := s.settings.QuickQuantity
	var qq scanner.QuickQuantity
	tok, qq = scanner.ApplyQuickQuantity(tok, scanner.QuickQuantity{
		Value:     previous,
		AutoReset: s.settings.AutoResetQuickQuantity,
	})
	if qq.Value != previous {
		s.settings.QuickQuantity = qq.Value
		s.persistLocked()
	}
	epoch := s.epoch
	s.mu.Unlock()

	v, err := s.gateway.Resolve(ctx, tok.Code, depotID)
	if err != nil {
		var multi *apperror.MultipleMatchesError
		if errors.As(err, &multi) {
			s.rememberCandidates(multi.Candidates)
		}
		s.mu.Lock()
		if s.epoch == epoch {
			s.restoreQuickQuantityLocked(previous, qq.Value)
		}
		s.mu.Unlock()
		return domain.ScanResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return domain.ScanResult{}, apperror.NewConflictError(fmt.Sprintf("Leitura de %s descartada: a sessão mudou durante a consulta.", tok.Code))
	}
	if s.settings.LookupDepotID() != depotID {
		s.restoreQuickQuantityLocked(previous, qq.Value)
		return domain.ScanResult{}, apperror.NewConflictError(fmt.Sprintf("Leitura de %s descartada: a sessão mudou durante a consulta.", tok.Code))
	}
	if err := s.checkMutableLocked(); err != nil {
		s.restoreQuickQuantityLocked(previous, qq.Value)
		return domain.ScanResult{}, err
	}
	if v.Code == "" {
		v.Code = tok.Code
	}
	res, err := s.addLocked(v, tok.Quantity)
	if err != nil {
		s.restoreQuickQuantityLocked(previous, qq.Value)
		return domain.ScanResult{}, err
	}
	return res, nil
}

// restoreQuickQuantityLocked devolve a quantidade rápida consumida por uma leitura
// que não entrou no ledger. Uma alteração feita pelo operador nesse meio tempo é mantida.
func (s *Service) restoreQuickQuantityLocked(previous, applied int) {
	if previous == applied || s.settings.QuickQuantity != applied {
		return
	}
	s.settings.QuickQuantity = previous
	s.persistLocked()
}

// Search faz a busca textual no depósito consultado e guarda os candidatos para
// AddCandidate.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Variation, error) {
	s.mu.Lock()
	depotID := s.settings.LookupDepotID()
	s.mu.Unlock()

	found, err := s.gateway.Search(ctx, query, depotID)
	if err != nil {
		return nil, err
	}
	s.rememberCandidates(found)
	return found, nil
}

func (s *Service) rememberCandidates(vs []domain.Variation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = make(map[string]domain.Variation, len(vs))
	for _, v := range vs {
		s.candidates[v.ID] = v
	}
}

// AddCandidate adiciona uma variação escolhida da última busca. quantity ≤ 0 conta
// como leitura simples (sujeita à quantidade rápida).
func (s *Service) AddCandidate(ctx context.Context, variationID string, quantity int) (domain.ScanResult, error) {
	s.mu.Lock()
	v, ok := s.candidates[variationID]
	if !ok {
		s.mu.Unlock()
		return domain.ScanResult{}, apperror.NewNotFoundError(fmt.Sprintf("Variação %s não está entre os resultados da última busca.", variationID))
	}
	s.mu.Unlock()

	tok := scanner.Token{Code: v.Code, Quantity: 1}
	if quantity > 0 {
		tok.Quantity = scanner.ClampQuantity(quantity)
	}

	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.ScanResult{}, err
	}
	previous := s.settings.QuickQuantity
	var qq scanner.QuickQuantity
	tok, qq = scanner.ApplyQuickQuantity(tok, scanner.QuickQuantity{Value: previous, AutoReset: s.settings.AutoResetQuickQuantity})
	s.settings.QuickQuantity = qq.Value
	res, err := s.addLocked(v, tok.Quantity)
	if err != nil {
		s.restoreQuickQuantityLocked(previous, qq.Value)
	}
	s.mu.Unlock()

	if err != nil {
		s.cue.Failure()
		return domain.ScanResult{}, err
	}
	s.cue.Success()
	return res, nil
}

// AddOrIncrement adiciona quantity à linha da variação, passando pela política de saldo.
func (s *Service) AddOrIncrement(v domain.Variation, quantity int) (domain.ScanResult, error) {
	if v.ID == "" {
		return domain.ScanResult{}, apperror.NewValidationError("Variação sem identificador.")
	}
	if quantity < domain.MinQuantity {
		return domain.ScanResult{}, apperror.NewValidationError("A quantidade deve ser positiva.")
	}

	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.ScanResult{}, err
	}
	res, err := s.addLocked(v, scanner.ClampQuantity(quantity))
	s.mu.Unlock()

	if err != nil {
		s.cue.Failure()
		return domain.ScanResult{}, err
	}
	s.cue.Success()
	return res, nil
}

// addLocked aplica a política e, se aprovada, a adição com seus efeitos colaterais:
// histórico, última leitura e espelho.
func (s *Service) addLocked(v domain.Variation, quantity int) (domain.ScanResult, error) {
	pending := s.ledger.Quantity(v.ID)
	if err := checkStock(s.settings, v, pending, quantity); err != nil {
		return domain.ScanResult{}, err
	}

	prev, existed := s.ledger.Get(v.ID)
	total := s.ledger.AddOrIncrement(v.LineItem(quantity), quantity)
	s.history.Push(domain.HistoryEntry{
		VariationID:    v.ID,
		Delta:          quantity,
		Incremented:    existed,
		PrevKnownStock: prev.KnownStock,
	})
	s.lastScanned = v.ID
	s.persistLocked()

	item, _ := s.ledger.Get(v.ID)
	return domain.ScanResult{Item: item, Added: quantity, Quantity: total}, nil
}

// --- Edição manual ---

// AlterQuantity ajusta a linha por delta (botões +/-). Resultado ≤ 0 remove a linha.
// Não passa pela política de saldo nem entra no histórico.
func (s *Service) AlterQuantity(variationID string, delta int) error {
	if delta == 0 {
		return apperror.NewValidationError("O ajuste (delta) não pode ser zero.")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if !s.ledger.Alter(variationID, delta) {
		return lineNotFound(variationID)
	}
	s.persistLocked()
	return nil
}

// SetQuantity define a quantidade absoluta, limitada a [1, 99999]. Nunca remove a linha.
func (s *Service) SetQuantity(variationID string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if !s.ledger.Set(variationID, value) {
		return lineNotFound(variationID)
	}
	s.persistLocked()
	return nil
}

// Remove exclui a linha sem confirmação.
func (s *Service) Remove(variationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	if !s.ledger.Remove(variationID) {
		return lineNotFound(variationID)
	}
	if s.lastScanned == variationID {
		s.lastScanned = ""
	}
	s.persistLocked()
	return nil
}

// ClearAll esvazia ledger e histórico e apaga o snapshot do espelho.
func (s *Service) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return err
	}
	s.resetLocked()
	s.logger.Info("Sessão limpa pelo operador.", map[string]interface{}{"session_id": s.sessionID})
	return nil
}

// resetLocked descarta o conteúdo da sessão e muda de época. Modo, tipo e
// depósitos são mantidos; a quantidade rápida volta ao padrão.
func (s *Service) resetLocked() {
	s.settings.QuickQuantity = domain.DefaultSettings().QuickQuantity
	s.ledger.Clear()
	s.history.Clear()
	s.lastScanned = ""
	s.candidates = make(map[string]domain.Variation)
	s.epoch++
	s.mirror.Clear()
}

// Undo desfaz a última leitura. Pilha vazia não faz nada (retorna false).
func (s *Service) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return false, err
	}
	entry, ok := s.history.Pop()
	if !ok {
		return false, nil
	}
	s.ledger.Revert(entry)
	if last, ok := s.history.Peek(); ok {
		s.lastScanned = last.VariationID
	} else {
		s.lastScanned = ""
	}
	s.persistLocked()
	return true, nil
}

// --- Finalização ---

// Finalize valida e envia o lote. Em caso de sucesso a sessão volta a vazio; em
// caso de falha o ledger fica intacto para correção ou nova tentativa.
func (s *Service) Finalize(ctx context.Context) (domain.BatchResult, error) {
	s.mu.Lock()
	if err := s.checkMutableLocked(); err != nil {
		s.mu.Unlock()
		return domain.BatchResult{}, err
	}
	if s.ledger.Len() == 0 {
		s.mu.Unlock()
		return domain.BatchResult{}, apperror.NewValidationError("Nenhum item pendente para finalizar.")
	}
	if err := checkLocations(s.settings); err != nil {
		s.mu.Unlock()
		return domain.BatchResult{}, err
	}
	req := batchRequest(s.settings, s.ledger.BatchItems())
	s.submitting = true
	s.mu.Unlock()

	key := s.newKey()
	s.logger.Info("Enviando lote ao backend.", map[string]interface{}{
		"session_id":      s.sessionID,
		"modo":            req.Mode,
		"itens":           len(req.Items),
		"idempotency_key": key,
	})
	result, err := s.gateway.Submit(ctx, req, key)

	s.mu.Lock()
	s.submitting = false
	if err != nil {
		s.mu.Unlock()
		s.cue.Failure()
		s.logger.Warn("Lote recusado; itens mantidos.", map[string]interface{}{"error": err.Error()})
		return domain.BatchResult{}, err
	}
	s.resetLocked()
	s.mu.Unlock()

	s.cue.Success()
	if result.DocumentURL != "" && s.opts.FetchDocuments && s.docs != nil {
		result.DocumentPath = s.saveDocument(ctx, result)
	}
	return result, nil
}

// saveDocument baixa e guarda o documento de transferência. Falhas não afetam o envio.
func (s *Service) saveDocument(ctx context.Context, result domain.BatchResult) string {
	doc, err := s.gateway.FetchDocument(ctx, result.DocumentURL)
	if err != nil {
		s.logger.Warn("Documento de transferência indisponível.", map[string]interface{}{"url": result.DocumentURL, "error": err.Error()})
		return ""
	}
	path, err := s.docs.Save(ctx, result.TransferID, doc.Data)
	if err != nil {
		s.logger.Warn("Falha ao salvar documento de transferência.", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return path
}

// --- Configuração ---

// UpdateSettings aplica uma alteração parcial. A alteração é validada por inteiro
// antes de ser aplicada. Mudar modo ou tipo nunca limpa o ledger.
func (s *Service) UpdateSettings(p domain.SettingsPatch) (domain.SessionSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutableLocked(); err != nil {
		return domain.SessionSettings{}, err
	}

	next := s.settings
	if p.Mode != nil {
		if !p.Mode.Valid() {
			return domain.SessionSettings{}, apperror.NewValidationError(fmt.Sprintf("Modo '%s' inválido.", *p.Mode))
		}
		next.Mode = *p.Mode
	}
	if p.OperationType != nil {
		if !p.OperationType.Valid() {
			return domain.SessionSettings{}, apperror.NewValidationError(fmt.Sprintf("Tipo '%s' inválido.", *p.OperationType))
		}
		next.OperationType = *p.OperationType
	}
	for _, d := range []struct {
		value  *string
		target *string
	}{
		{p.DepotID, &next.DepotID},
		{p.SourceDepotID, &next.SourceDepotID},
		{p.DestDepotID, &next.DestDepotID},
	} {
		if d.value == nil {
			continue
		}
		if err := s.checkDepotLocked(*d.value); err != nil {
			return domain.SessionSettings{}, err
		}
		*d.target = *d.value
	}
	if p.QuickQuantity != nil {
		next.QuickQuantity = scanner.ClampQuantity(*p.QuickQuantity)
	}
	if p.AutoResetQuickQuantity != nil {
		next.AutoResetQuickQuantity = *p.AutoResetQuickQuantity
	}
	if p.CameraEnabled != nil {
		next.CameraEnabled = *p.CameraEnabled
	}

	if next.Mode != s.settings.Mode && s.ledger.Len() > 0 {
		s.logger.Warn("Modo alterado com itens pendentes; saldos conhecidos podem estar desatualizados.", map[string]interface{}{
			"de":   s.settings.Mode,
			"para": next.Mode,
		})
	}
	s.settings = next
	s.persistLocked()
	return s.settings, nil
}

func (s *Service) checkDepotLocked(id string) error {
	if id == "" || len(s.depots) == 0 {
		return nil
	}
	for _, d := range s.depots {
		if d.ID == id {
			return nil
		}
	}
	return apperror.NewValidationError(fmt.Sprintf("Depósito %s desconhecido.", id))
}

// SetMode troca entre normal e transferência.
func (s *Service) SetMode(m domain.Mode) error {
	_, err := s.UpdateSettings(domain.SettingsPatch{Mode: &m})
	return err
}

// ToggleMode alterna normal ⇄ transferência.
func (s *Service) ToggleMode() (domain.Mode, error) {
	s.mu.Lock()
	next := domain.ModeTransfer
	if s.settings.Mode == domain.ModeTransfer {
		next = domain.ModeNormal
	}
	s.mu.Unlock()
	settings, err := s.UpdateSettings(domain.SettingsPatch{Mode: &next})
	return settings.Mode, err
}

// SetOperationType define entrada ou saída.
func (s *Service) SetOperationType(o domain.OperationType) error {
	_, err := s.UpdateSettings(domain.SettingsPatch{OperationType: &o})
	return err
}

// ToggleOperationType alterna entrada ⇄ saída.
func (s *Service) ToggleOperationType() (domain.OperationType, error) {
	s.mu.Lock()
	next := domain.OperationSaida
	if s.settings.OperationType == domain.OperationSaida {
		next = domain.OperationEntrada
	}
	s.mu.Unlock()
	settings, err := s.UpdateSettings(domain.SettingsPatch{OperationType: &next})
	return settings.OperationType, err
}

// SetDepot define o depósito do modo normal.
func (s *Service) SetDepot(id string) error {
	_, err := s.UpdateSettings(domain.SettingsPatch{DepotID: &id})
	return err
}

// SetTransferDepots define origem e destino da transferência.
func (s *Service) SetTransferDepots(sourceID, destID string) error {
	_, err := s.UpdateSettings(domain.SettingsPatch{SourceDepotID: &sourceID, DestDepotID: &destID})
	return err
}

// SetQuickQuantity define a quantidade rápida, limitada a [1, 99999].
func (s *Service) SetQuickQuantity(v int) (int, error) {
	settings, err := s.UpdateSettings(domain.SettingsPatch{QuickQuantity: &v})
	return settings.QuickQuantity, err
}

// AdjustQuickQuantity soma delta à quantidade rápida.
func (s *Service) AdjustQuickQuantity(delta int) (int, error) {
	s.mu.Lock()
	next := s.settings.QuickQuantity + delta
	s.mu.Unlock()
	return s.SetQuickQuantity(next)
}

// ResetQuickQuantity volta a quantidade rápida para 1.
func (s *Service) ResetQuickQuantity() error {
	_, err := s.SetQuickQuantity(1)
	return err
}

// SetAutoResetQuickQuantity liga ou desliga o retorno automático para 1.
func (s *Service) SetAutoResetQuickQuantity(on bool) error {
	_, err := s.UpdateSettings(domain.SettingsPatch{AutoResetQuickQuantity: &on})
	return err
}

// ToggleCamera liga ou desliga a leitura pela câmera.
func (s *Service) ToggleCamera() (bool, error) {
	s.mu.Lock()
	next := !s.settings.CameraEnabled
	s.mu.Unlock()
	settings, err := s.UpdateSettings(domain.SettingsPatch{CameraEnabled: &next})
	return settings.CameraEnabled, err
}

// --- Consulta ---

// View devolve uma cópia do estado atual da sessão.
func (s *Service) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	depots := append([]domain.Depot{}, s.depots...)
	return domain.SessionView{
		SessionID:   s.sessionID,
		State:       s.stateLocked(),
		Settings:    s.settings,
		Items:       s.ledger.Items(),
		Lines:       s.ledger.Len(),
		TotalUnits:  s.ledger.TotalUnits(),
		LastScanned: s.lastScanned,
		UndoDepth:   s.history.Len(),
		Depots:      depots,
	}
}

// Export gera a planilha de conferência do lote pendente.
func (s *Service) Export() ([]byte, error) {
	s.mu.Lock()
	items := s.ledger.Items()
	settings := s.settings
	s.mu.Unlock()

	data, err := report.ConferenceSheet(items, settings, s.now())
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao gerar planilha de conferência.", err)
	}
	return data, nil
}

// Close encerra a sessão: consultas em andamento são descartadas e a última
// gravação pendente do espelho é aplicada.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.epoch++
	s.mu.Unlock()
	return s.mirror.Close(ctx)
}

// --- Auxiliares ---

func (s *Service) stateLocked() domain.SessionState {
	switch {
	case s.submitting:
		return domain.StateSubmitting
	case s.ledger.Len() == 0:
		return domain.StateEmpty
	default:
		return domain.StatePending
	}
}

func (s *Service) checkMutableLocked() error {
	if s.closed {
		return apperror.NewConflictError("Sessão encerrada.")
	}
	if s.submitting {
		return apperror.NewConflictError("Envio do lote em andamento.")
	}
	return nil
}

// persistLocked agenda a gravação do snapshot atual no espelho.
func (s *Service) persistLocked() {
	s.mirror.Save(domain.NewSnapshot(s.ledger.Items(), s.settings))
}

func lineNotFound(variationID string) error {
	return apperror.NewNotFoundError(fmt.Sprintf("Variação %s não está no lote.", variationID))
}
