package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-converter/internal/model"
)

// Sheet names
const (
	SheetInvoices = "Notas Fiscais"
	SheetItems    = "Produtos"
	SheetSummary  = "Resumo"
)

const (
	headerFill    = "0000CC"
	headerFont    = "FFFFFF"
	maxColumnWide = 50
	defaultSheet  = "Sheet1"
)

// WorkbookInput is the content of one exported workbook
type WorkbookInput struct {
	Headers []*model.Record
	Items   []*model.Record
	// Summary adds a summary sheet when non-empty
	Summary []Metric
}

// WriteWorkbook writes an xlsx workbook to w. The invoice sheet is always
// present; the item sheet only when there are items. Writing without any
// header record returns model.ErrNoRecords.
func WriteWorkbook(w io.Writer, in WorkbookInput) error {
	if len(in.Headers) == 0 {
		return model.ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetInvoices); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFont},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSheet(f, SheetInvoices, NewTable(in.Headers), headerStyle); err != nil {
		return err
	}

	if len(in.Items) > 0 {
		if _, err := f.NewSheet(SheetItems); err != nil {
			return err
		}
		if err := writeSheet(f, SheetItems, NewTable(in.Items), headerStyle); err != nil {
			return err
		}
	}

	if len(in.Summary) > 0 {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return err
		}
		if err := writeSheet(f, SheetSummary, summaryTable(in.Summary), headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

// FileName returns the download name "<prefix>_<YYYYMMDD_HHMMSS>.xlsx"
func FileName(prefix string, at time.Time) string {
	return prefix + "_" + at.Format("20060102_150405") + ".xlsx"
}

func summaryTable(metrics []Metric) *Table {
	t := &Table{Columns: []string{MetricColumn, ValueColumn}}
	for _, m := range metrics {
		t.Rows = append(t.Rows, []string{m.Name, m.Value})
	}
	return t
}

func writeSheet(f *excelize.File, sheet string, t *Table, headerStyle int) error {
	if err := setRow(f, sheet, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if len(t.Columns) == 0 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(len(t.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}

	for i := range t.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, columnWidth(t, i)); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

// columnWidth is the longest cell of the column plus padding, capped
func columnWidth(t *Table, col int) float64 {
	longest := utf8.RuneCountInString(t.Columns[col])
	for _, row := range t.Rows {
		if n := utf8.RuneCountInString(row[col]); n > longest {
			longest = n
		}
	}
	return float64(min(longest+2, maxColumnWide))
}
