// Package export writes classification results as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"feedbackbot/internal/domain"
)

const sheetName = "Feedback"

var header = []string{"input", "theme", "sentiment", "highlight"}

// WriteXLSX writes one header row and one row per record, in order.
func WriteXLSX(w io.Writer, records []domain.ClassificationRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		row := []string{rec.Input, rec.Theme, rec.Sentiment, rec.Highlight}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 80); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "B", "D", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name row %d: %w", rowNum, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// Filename is the download name for a stored batch.
func Filename(batchID string) string {
	return "feedback_results_" + batchID + ".xlsx"
}
