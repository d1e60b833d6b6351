// Package nfe extracts NF-e header and line-item records from XML documents.
package nfe

import (
	"strings"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/model"
)

// Extractor turns NF-e documents into flat records for a field selection
type Extractor struct {
	header     []catalog.Field
	items      []catalog.Field
	formatting bool
}

// Option configures an Extractor
type Option func(*extractorConfig)

type extractorConfig struct {
	headerIDs  []string
	itemIDs    []string
	headerSet  bool
	itemsSet   bool
	formatting bool
}

// WithHeaderFields selects invoice-level fields by id
func WithHeaderFields(ids ...string) Option {
	return func(c *extractorConfig) {
		c.headerIDs = ids
		c.headerSet = true
	}
}

// WithItemFields selects line-item fields by id. An empty selection
// disables line-item extraction.
func WithItemFields(ids ...string) Option {
	return func(c *extractorConfig) {
		c.itemIDs = ids
		c.itemsSet = true
	}
}

// WithFormatting toggles value formatting (enabled by default)
func WithFormatting(enabled bool) Option {
	return func(c *extractorConfig) {
		c.formatting = enabled
	}
}

// NewExtractor creates an extractor over cat. Without explicit selections
// the catalog defaults are used.
func NewExtractor(cat *catalog.Catalog, opts ...Option) *Extractor {
	cfg := &extractorConfig{formatting: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.headerSet {
		cfg.headerIDs = cat.DefaultHeaderIDs()
	}
	if !cfg.itemsSet {
		cfg.itemIDs = cat.DefaultItemIDs()
	}

	return &Extractor{
		header:     cat.SelectHeader(cfg.headerIDs),
		items:      cat.SelectItems(cfg.itemIDs),
		formatting: cfg.formatting,
	}
}

// HeaderFields returns the resolved invoice-level selection
func (e *Extractor) HeaderFields() []catalog.Field {
	return append([]catalog.Field(nil), e.header...)
}

// ItemFields returns the resolved line-item selection
func (e *Extractor) ItemFields() []catalog.Field {
	return append([]catalog.Field(nil), e.items...)
}

// Formatting reports whether values are formatted
func (e *Extractor) Formatting() bool {
	return e.formatting
}

// ExtractHeader builds the invoice-level record of one document.
// It returns a *model.ParseError for malformed XML and a nil record with a
// nil error when the document has no infNFe node.
func (e *Extractor) ExtractHeader(data []byte, source string) (*model.Record, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, model.NewParseError(source, "xml", "malformed XML document", err)
	}

	invoice := FindInvoice(doc)
	if invoice == nil {
		return nil, nil
	}

	rec := model.NewRecord()
	rec.Set(catalog.FileLabel, source)
	for _, f := range e.header {
		var value string
		if f.ID == catalog.AccessKeyID {
			value = format.AccessKey(invoice.SelectAttrValue(AccessKeyAttr, ""))
		} else {
			value = Resolve(invoice, f.Path)
		}
		rec.Set(f.Label, e.value(value, f.Kind))
	}
	return rec, nil
}

// ExtractLineItems builds one record per det node of the document. The
// document is parsed again; malformed or non-NF-e input yields no records.
// Invoice number and access key are copied from header when it carries them.
func (e *Extractor) ExtractLineItems(data []byte, header *model.Record) []*model.Record {
	if len(e.items) == 0 {
		return nil
	}

	doc, err := Parse(data)
	if err != nil {
		return nil
	}
	invoice := FindInvoice(doc)
	if invoice == nil {
		return nil
	}

	dets := FindItems(invoice)
	out := make([]*model.Record, 0, len(dets))
	for _, det := range dets {
		rec := model.NewRecord()
		source := ""
		if header != nil {
			if v, ok := header.Lookup(catalog.InvoiceNumberLabel); ok {
				rec.Set(catalog.InvoiceRefLabel, v)
			}
			if v, ok := header.Lookup(catalog.AccessKeyLabel); ok {
				rec.Set(catalog.AccessKeyRefLabel, v)
			}
			source = header.Get(catalog.FileLabel)
		}
		rec.Set(catalog.FileLabel, source)

		for _, f := range e.items {
			rec.Set(f.Label, e.value(Resolve(det, f.Path), f.Kind))
		}
		out = append(out, rec)
	}
	return out
}

// value renders raw for kind. Unformatted values pass through untouched,
// surrounding whitespace included.
func (e *Extractor) value(raw string, kind format.Kind) string {
	if !e.formatting {
		return raw
	}
	return format.Value(strings.TrimSpace(raw), kind)
}
