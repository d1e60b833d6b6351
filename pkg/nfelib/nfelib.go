// Package nfelib provides a public API for converting Brazilian NF-e XML
// documents into spreadsheet-ready records.
//
// Example usage:
//
//	conv, err := nfelib.NewConverter(nfelib.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := conv.Convert(ctx, []nfelib.Source{{Name: "nota.xml", Data: data}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = conv.WriteWorkbook(w, res)
package nfelib

import (
	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

// Re-export core types for public API
type (
	Record   = model.Record
	Field    = catalog.Field
	Category = catalog.Category
	Kind     = format.Kind
	Source   = processor.Source
	Outcome  = processor.Outcome
	Status   = processor.Status
	Metric   = export.Metric
)

// Re-export format kinds
const (
	KindText     = format.KindText
	KindCurrency = format.KindCurrency
	KindNumber   = format.KindNumber
	KindDate     = format.KindDate
	KindCNPJ     = format.KindCNPJ
	KindCPF      = format.KindCPF
	KindTaxID    = format.KindTaxID
)

// Re-export outcome statuses
const (
	StatusOK      = processor.StatusOK
	StatusSkipped = processor.StatusSkipped
	StatusFailed  = processor.StatusFailed
	StatusWarning = processor.StatusWarning
)

// Re-export error types
type (
	ParseError      = model.ParseError
	ValidationError = model.ValidationError
	ExtractionError = model.ExtractionError
)

// Re-export sentinel errors
var (
	ErrNotInvoice     = model.ErrNotInvoice
	ErrNoRecords      = model.ErrNoRecords
	ErrNoHeaderFields = model.ErrNoHeaderFields
)

// Catalog returns the categories of invoice fields and the item fields
func Catalog() ([]Category, []Field) {
	cat := catalog.Default()
	return cat.Categories(), cat.ItemFields()
}

// FormatValue renders raw as kind in Brazilian conventions
func FormatValue(raw string, kind Kind) string {
	return format.Value(raw, kind)
}
