package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

const (
	ledgerSheet = "Ledger"
	timeLayout  = "2006-01-02 15:04:05"
)

var ledgerHeader = []string{
	"Time (UTC)", "Event", "Ticket", "Requester", "Actor", "Amount", "When to send", "Comment", "Status",
}

var columnWidths = map[string]float64{
	"A": 20, "B": 12, "C": 22, "D": 22, "E": 22, "F": 18, "G": 26, "H": 48, "I": 12,
}

// LedgerExporter renders journal entries as an xlsx workbook
type LedgerExporter struct {
	logger *zap.Logger
}

// NewLedgerExporter creates a LedgerExporter
func NewLedgerExporter(logger *zap.Logger) *LedgerExporter {
	return &LedgerExporter{logger: logger}
}

// ContentType is the MIME type of the workbook
func (e *LedgerExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension is the workbook file extension
func (e *LedgerExporter) Extension() string {
	return ".xlsx"
}

// Export writes one row per journal entry below a frozen header
func (e *LedgerExporter) Export(ctx context.Context, entries []*entity.JournalEntry) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(file); err != nil {
		return nil, err
	}

	amountStyle, err := file.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			entry.CreatedAt.UTC().Format(timeLayout),
			entry.EventType,
			entry.TicketID,
			entry.RequesterID,
			entry.ActorID,
			entry.Amount,
			conditionLabel(entry.Condition),
			entry.Comment,
			entry.Status,
		}
		if err := file.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		amountCell, _ := excelize.CoordinatesToCellName(6, row)
		if err := file.SetCellStyle(ledgerSheet, amountCell, amountCell, amountStyle); err != nil {
			return nil, fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}

	for col, width := range columnWidths {
		if err := file.SetColWidth(ledgerSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Ledger workbook rendered", zap.Int("rows", len(entries)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (e *LedgerExporter) writeHeader(file *excelize.File) error {
	header := make([]interface{}, len(ledgerHeader))
	for i, h := range ledgerHeader {
		header[i] = h
	}
	if err := file.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDE3FF"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(ledgerHeader), 1)
	if err := file.SetCellStyle(ledgerSheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	return file.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func conditionLabel(raw string) string {
	if raw == "" {
		return ""
	}
	return entity.DeliveryCondition(raw).Label()
}

var _ port.LedgerExporter = (*LedgerExporter)(nil)
