// Package documentrepo guarda os documentos de transferência baixados do backend.
package documentrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocaixa/internal/errors"
	"gocaixa/internal/pkg/logger"
)

// FileRepository grava os PDFs em um diretório local (DOCUMENT_DIR).
type FileRepository struct {
	Dir    string
	logger logger.Logger
	now    func() time.Time
}

// NewFileRepository cria o repositório; o diretório é criado na primeira gravação.
func NewFileRepository(dir string, logger logger.Logger) *FileRepository {
	return &FileRepository{Dir: dir, logger: logger, now: time.Now}
}

// Save grava o documento como transferencia-<id>.pdf e devolve o caminho final.
// A escrita passa por um arquivo temporário renomeado ao final.
func (r *FileRepository) Save(_ context.Context, transferID string, data []byte) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", errors.NewInternalError("Falha ao criar diretório de documentos.", err)
	}

	name := fmt.Sprintf("transferencia-%s.pdf", sanitize(transferID, r.now()))
	final := filepath.Join(r.Dir, name)

	tmp, err := os.CreateTemp(r.Dir, ".doc-*.tmp")
	if err != nil {
		return "", errors.NewInternalError("Falha ao criar arquivo temporário.", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.NewInternalError("Falha ao gravar documento.", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewInternalError("Falha ao gravar documento.", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", errors.NewInternalError("Falha ao gravar documento.", err)
	}

	r.logger.Info("Documento de transferência salvo.", map[string]interface{}{"path": final, "bytes": len(data)})
	return final, nil
}

// sanitize mantém apenas caracteres seguros para nome de arquivo. Sem id, usa o horário.
func sanitize(id string, now time.Time) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return now.Format("20060102-150405")
	}
	return b.String()
}
