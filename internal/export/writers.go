package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rezonia/nfe-converter/internal/model"
)

// Document is the JSON shape of an export
type Document struct {
	Invoices []*model.Record `json:"invoices"`
	Items    []*model.Record `json:"items"`
	Summary  []Metric        `json:"summary,omitempty"`
}

// WriteJSON writes records and summary as one indented JSON document
func WriteJSON(w io.Writer, doc Document) error {
	if doc.Invoices == nil {
		doc.Invoices = []*model.Record{}
	}
	if doc.Items == nil {
		doc.Items = []*model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes a table using ';' as separator, the convention for
// spreadsheets with ',' as decimal point.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteText writes a table as aligned columns for terminals
func WriteText(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
