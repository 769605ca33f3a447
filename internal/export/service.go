package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
	"github.com/joseph-ayodele/perks-tracker/internal/repository"
)

const sheetName = "Perks"

// Row is one candidate with the screenshot it came from.
type Row struct {
	Source string `json:"source"`
	perks.PerkCandidate
}

// RowsFromDrafts converts stored drafts into export rows.
func RowsFromDrafts(drafts []repository.Draft) []Row {
	rows := make([]Row, len(drafts))
	for i, d := range drafts {
		rows[i] = Row{Source: d.Source, PerkCandidate: d.PerkCandidate}
	}
	return rows
}

// Service produces review exports for stored batches.
type Service struct {
	drafts repository.DraftRepository
	logger *slog.Logger
}

func NewService(drafts repository.DraftRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{drafts: drafts, logger: logger}
}

// BatchXLSX returns the review workbook for a stored batch.
func (s *Service) BatchXLSX(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	start := time.Now()
	drafts, err := s.drafts.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	buf, err := CandidatesXLSX(RowsFromDrafts(drafts))
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"batch_id", batchID.String(),
		"rows", len(drafts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

// BatchJSON returns the schema-checked JSON export for a stored batch.
func (s *Service) BatchJSON(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	drafts, err := s.drafts.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	return CandidatesJSON(RowsFromDrafts(drafts))
}

// CandidatesXLSX builds a review workbook with one candidate per row.
func CandidatesXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, err
		}
	}
	_ = f.DeleteSheet("Sheet1")
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Issuer", "Merchant", "Offer", "Value", "Expires", "Confidence", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		write(1, string(r.Issuer))
		write(2, r.Merchant)
		write(3, truncate(r.Description, 200))
		write(4, r.Value)
		write(5, r.Expiration)
		write(6, r.Confidence)
		write(7, r.Source)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "B", 24)
	_ = f.SetColWidth(sheetName, "C", "C", 56)
	_ = f.SetColWidth(sheetName, "D", "F", 12)
	_ = f.SetColWidth(sheetName, "G", "G", 40)
	_ = f.AutoFilter(sheetName, fmt.Sprintf("A1:G%d", len(rows)+1), nil)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
