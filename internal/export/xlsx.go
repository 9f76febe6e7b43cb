package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes a styled workbook with one sheet per report table
// and returns the path written.
func ExportXLSX(e *Exporter, dir string) (string, error) {
	path := filepath.Join(dir, "advisor_report.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"305496"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}
	zebraStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	for i, table := range e.Tables() {
		sheet := table.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return "", err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return "", err
			}
		}
		if err := writeSheet(f, sheet, table, headerStyle, zebraStyle); err != nil {
			return "", fmt.Errorf("failed to build sheet %s: %w", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, table Table, headerStyle, zebraStyle int) error {
	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.CoordinatesToCellName(len(table.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		anchor, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, anchor, &cells); err != nil {
			return err
		}
		if i%2 == 1 {
			end, err := excelize.CoordinatesToCellName(len(row), i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, anchor, end, zebraStyle); err != nil {
				return err
			}
		}
	}

	// Keep headers visible while scrolling.
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}
