package export

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pankaj-dahiya-devops/shcx/internal/pipeline"
)

const (
	// SheetName is the only sheet of the workbook.
	SheetName = "Security Controls"

	// MaxColumnWidth caps auto-sized column widths.
	MaxColumnWidth = 100
)

// XLSXWriter writes a single-sheet workbook with a bold header row and
// columns sized to their longest value.
type XLSXWriter struct{}

func (XLSXWriter) Write(w io.Writer, t *pipeline.Table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	widths := make([]int, len(t.Columns))
	for c, name := range t.Columns {
		if err := setCell(f, c, 1, name); err != nil {
			return err
		}
		widths[c] = utf8.RuneCountInString(name)
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if err := setCell(f, c, r+2, v); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); c < len(widths) && n > widths[c] {
				widths[c] = n
			}
		}
	}

	if len(t.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for c, n := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, float64(ColumnWidth(n))); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ColumnWidth is the display width for a column whose longest value has n
// characters.
func ColumnWidth(n int) int {
	return min(n+2, MaxColumnWidth)
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("set %s: %w", cell, err)
	}
	return nil
}
