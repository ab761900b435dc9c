package scanner

import (
	"strings"
	"time"
)

// WedgeBuffer acumula os caracteres emitidos por um leitor keyboard-wedge e
// entrega o código completo quando chega o Enter.
//
// Com MaxGap > 0, um intervalo maior que MaxGap entre duas teclas descarta o que
// estava acumulado: leitores emitem a sequência inteira em poucos milissegundos,
// digitação humana não.
type WedgeBuffer struct {
	MaxGap    time.Duration
	MinLength int

	buf  strings.Builder
	last time.Time
}

// NewWedgeBuffer cria o buffer com o intervalo máximo entre teclas (0 desativa).
func NewWedgeBuffer(maxGap time.Duration) *WedgeBuffer {
	return &WedgeBuffer{MaxGap: maxGap, MinLength: 1}
}

// Feed recebe uma tecla e o instante em que chegou. Retorna o código acumulado
// quando a tecla é Enter e o buffer tem ao menos MinLength caracteres.
func (w *WedgeBuffer) Feed(r rune, at time.Time) (string, bool) {
	if r == '\r' || r == '\n' {
		code := strings.TrimSpace(w.buf.String())
		w.Reset()
		if len(code) < w.MinLength {
			return "", false
		}
		return code, true
	}

	if w.MaxGap > 0 && w.buf.Len() > 0 && at.Sub(w.last) > w.MaxGap {
		w.buf.Reset()
	}
	w.last = at
	w.buf.WriteRune(r)
	return "", false
}

// Pending devolve o conteúdo ainda não finalizado.
func (w *WedgeBuffer) Pending() string {
	return w.buf.String()
}

// Reset descarta o conteúdo acumulado.
func (w *WedgeBuffer) Reset() {
	w.buf.Reset()
	w.last = time.Time{}
}
