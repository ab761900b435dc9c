// Package report gera a planilha de conferência do lote pendente.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"

	"gocaixa/internal/domain"
)

// ContentType é o tipo MIME da planilha gerada.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var itemHeaders = []string{"Código", "Referência", "Produto", "Quantidade", "Estoque conhecido"}

// ConferenceSheet monta a planilha com as linhas pendentes (aba "Conferência") e o
// contexto da sessão (aba "Sessão").
func ConferenceSheet(items []domain.LineItem, s domain.SessionSettings, generatedAt time.Time) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Conferência")
	if err != nil {
		return nil, fmt.Errorf("falha ao criar aba de itens: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range itemHeaders {
		cell := header.AddCell()
		cell.Value = h
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	total := 0
	for _, item := range items {
		row := sheet.AddRow()
		row.AddCell().Value = item.Code
		row.AddCell().Value = item.Reference
		row.AddCell().Value = item.Name
		row.AddCell().SetInt(item.Quantity)
		row.AddCell().SetInt(item.KnownStock)
		total += item.Quantity
	}

	totalRow := sheet.AddRow()
	label := totalRow.AddCell()
	label.Value = "Total"
	label.GetStyle().Font.Bold = true
	totalRow.AddCell()
	totalRow.AddCell().Value = fmt.Sprintf("%d linha(s)", len(items))
	totalRow.AddCell().SetInt(total)

	sheet.SetColWidth(1, 2, 18)
	sheet.SetColWidth(3, 3, 40)
	sheet.SetColWidth(4, 5, 14)

	info, err := file.AddSheet("Sessão")
	if err != nil {
		return nil, fmt.Errorf("falha ao criar aba de sessão: %w", err)
	}
	for _, kv := range sessionRows(s, generatedAt) {
		row := info.AddRow()
		row.AddCell().Value = kv[0]
		row.AddCell().Value = kv[1]
	}
	info.SetColWidth(1, 2, 24)

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("falha ao gravar planilha: %w", err)
	}
	return buf.Bytes(), nil
}

func sessionRows(s domain.SessionSettings, generatedAt time.Time) [][2]string {
	rows := [][2]string{{"Gerado em", generatedAt.Format("02/01/2006 15:04:05")}}
	if s.Mode == domain.ModeTransfer {
		rows = append(rows,
			[2]string{"Modo", "Transferência"},
			[2]string{"Depósito de origem", s.SourceDepotID},
			[2]string{"Depósito de destino", s.DestDepotID},
		)
		return rows
	}
	return append(rows,
		[2]string{"Modo", "Normal"},
		[2]string{"Operação", string(s.OperationType)},
		[2]string{"Depósito", s.DepotID},
	)
}
