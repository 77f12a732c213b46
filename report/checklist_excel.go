package report

import (
	"bytes"
	"fmt"

	"site-safety-inspection/models"

	"github.com/xuri/excelize/v2"
)

// ChecklistHeader defines the export columns. The operator fills in every
// column except the action text after download.
var ChecklistHeader = []string{
	"Corrective Action",
	"Completed (Yes/No)",
	"Responsible Person",
	"Target Date",
	"Remarks",
}

// ChecklistXLSX renders the corrective-actions checklist as an Excel
// workbook. An empty row set still yields a valid workbook with headers so
// the operator gets a usable template.
func ChecklistXLSX(rows []models.ChecklistRow) ([]byte, error) {
	f := excelize.NewFile()
	// Don't defer Close() here: WriteTo needs the file open.

	sheetName := "Corrective Actions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range ChecklistHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for i, row := range rows {
		values := []string{
			row.CorrectiveAction,
			row.Completed,
			row.ResponsiblePerson,
			row.TargetDate,
			row.Remarks,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	// Widen the action column; the rest keep defaults for operator entry.
	if err := f.SetColWidth(sheetName, "A", "A", 60); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	return buf.Bytes(), nil
}
