package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gocaixa/config"
	"gocaixa/internal/domain"
	apperror "gocaixa/internal/errors"
	"gocaixa/internal/pkg/logger"
	"gocaixa/internal/scanner"
	"gocaixa/internal/service/caixaservice"
	"gocaixa/internal/station"
)

// terminalCue emite o BEL do terminal. A falha toca duas vezes.
type terminalCue struct {
	out io.Writer
}

func (c terminalCue) Success() { fmt.Fprint(c.out, "\a") }
func (c terminalCue) Failure() { fmt.Fprint(c.out, "\a\a") }

// Estação de leitura em modo terminal: o leitor keyboard-wedge escreve no stdin,
// cada Enter fecha uma leitura. Linhas com o nome de um atalho (F2, F10, CTRL+Z...)
// disparam a ação correspondente.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Usando apenas variáveis do ambiente.")
	}

	cfg := config.LoadConfig()
	logFile, err := os.OpenFile("gocaixa.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("❌ não foi possível abrir gocaixa.log: %v", err)
	}
	defer logFile.Close()
	appLog := logger.NewLoggerWithWriter(cfg.LogLevel, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := station.Build(ctx, cfg, terminalCue{out: os.Stdout}, appLog)
	if err != nil {
		log.Fatalf("❌ falha ao montar a estação: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.Close(closeCtx)
	}()

	keymap := scanner.NewKeymap(scanner.DefaultShortcuts)
	t := &terminal{svc: st.Service, keymap: keymap, out: os.Stdout}
	t.render()

	wedge := scanner.NewWedgeBuffer(cfg.WedgeMaxGap)
	keys := readRunes(os.Stdin, appLog)
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-keys:
			if !ok {
				return
			}
			if code, done := wedge.Feed(r, time.Now()); done {
				t.handle(ctx, code)
			}
		}
	}
}

// readRunes entrega as teclas do stdin em um canal fechado no EOF.
func readRunes(in io.Reader, appLog logger.Logger) <-chan rune {
	out := make(chan rune, 64)
	go func() {
		defer close(out)
		reader := bufio.NewReader(in)
		for {
			r, _, err := reader.ReadRune()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					appLog.Error("Falha ao ler o terminal.", err)
				}
				return
			}
			out <- r
		}
	}()
	return out
}

type terminal struct {
	svc    *caixaservice.Service
	keymap *scanner.Keymap
	out    io.Writer
}

func (t *terminal) handle(ctx context.Context, line string) {
	if action, ok := t.keymap.Resolve(line, false); ok {
		res, err := t.svc.Dispatch(ctx, action)
		if err != nil {
			t.fail(err)
			return
		}
		if res.Batch != nil {
			fmt.Fprintf(t.out, "✔ %s\n", res.Batch.Message)
			if res.Batch.DocumentPath != "" {
				fmt.Fprintf(t.out, "  documento salvo em %s\n", res.Batch.DocumentPath)
			}
		}
		t.render()
		return
	}

	res, err := t.svc.Scan(ctx, line, scanner.SourceWedge)
	if err != nil {
		t.fail(err)
		return
	}
	if !res.Ignored {
		fmt.Fprintf(t.out, "+%d %s (%s) = %d\n", res.Added, res.Item.Name, res.Item.Code, res.Quantity)
	}
	t.render()
}

func (t *terminal) fail(err error) {
	resp := apperror.ToErrorResponse(err)
	fmt.Fprintf(t.out, "✖ %s\n", resp.Message)
	for _, m := range resp.Messages {
		fmt.Fprintf(t.out, "  - %s\n", m)
	}
	for _, c := range resp.Candidates {
		fmt.Fprintf(t.out, "  ? %s  %s  %s\n", c.Code, c.Reference, c.Name)
	}
}

func (t *terminal) render() {
	v := t.svc.View()
	fmt.Fprintf(t.out, "[%s] %s | %d linha(s), %d unidade(s) | qtd rápida %d\n",
		strings.ToUpper(string(v.State)), describe(v.Settings), v.Lines, v.TotalUnits, v.Settings.QuickQuantity)
}

func describe(s domain.SessionSettings) string {
	if s.Mode == domain.ModeTransfer {
		return fmt.Sprintf("transferência %s → %s", s.SourceDepotID, s.DestDepotID)
	}
	return fmt.Sprintf("%s no depósito %s", s.OperationType, s.DepotID)
}
