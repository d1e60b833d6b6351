// Package catalog declares the NF-e fields that can be extracted.
//
// Header fields are grouped in categories for display only; lookups treat
// them as one flat namespace keyed by id. Item fields are a flat table.
package catalog

import (
	"github.com/rezonia/nfe-converter/internal/format"
)

// Field describes one extractable column
type Field struct {
	ID    string      `json:"id" yaml:"id"`
	Label string      `json:"label" yaml:"label"`
	Path  string      `json:"path" yaml:"path"`
	Kind  format.Kind `json:"kind" yaml:"kind"`
}

// Category is a named group of header fields
type Category struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Well-known ids and labels used outside the table
const (
	AccessKeyID     = "chave"
	InvoiceNumberID = "numero_nf"
	InvoiceTotalID  = "valor_total"

	FileLabel          = "Arquivo"
	InvoiceNumberLabel = "Número NF"
	AccessKeyLabel     = "Chave de Acesso"
	InvoiceTotalLabel  = "Valor Total"
	InvoiceRefLabel    = "NF Número"
	AccessKeyRefLabel  = "NF Chave"
)

// Catalog is an immutable lookup table of header and item fields
type Catalog struct {
	categories   []Category
	items        []Field
	header       map[string]Field
	item         map[string]Field
	headerOrder  map[string]int
	itemOrder    map[string]int
	defaultHead  []string
	defaultItems []string
}

// New builds a catalog from explicit tables
func New(categories []Category, items []Field, defaultHeader, defaultItems []string) *Catalog {
	c := &Catalog{
		header:       make(map[string]Field),
		item:         make(map[string]Field),
		headerOrder:  make(map[string]int),
		itemOrder:    make(map[string]int),
		defaultHead:  append([]string(nil), defaultHeader...),
		defaultItems: append([]string(nil), defaultItems...),
	}

	for _, cat := range categories {
		cp := Category{Name: cat.Name, Fields: append([]Field(nil), cat.Fields...)}
		c.categories = append(c.categories, cp)
		for _, f := range cp.Fields {
			c.headerOrder[f.ID] = len(c.header)
			c.header[f.ID] = f
		}
	}
	for _, f := range items {
		c.itemOrder[f.ID] = len(c.items)
		c.items = append(c.items, f)
		c.item[f.ID] = f
	}
	return c
}

var std = New(headerCategories, itemFields, defaultHeaderIDs, defaultItemIDs)

// Default returns the NF-e catalog
func Default() *Catalog {
	return std
}

// Header looks up a header field by id
func (c *Catalog) Header(id string) (Field, bool) {
	f, ok := c.header[id]
	return f, ok
}

// Item looks up a line-item field by id
func (c *Catalog) Item(id string) (Field, bool) {
	f, ok := c.item[id]
	return f, ok
}

// Categories returns a copy of the header categories in display order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Fields: append([]Field(nil), cat.Fields...)}
	}
	return out
}

// HeaderFields returns every header field in catalog order
func (c *Catalog) HeaderFields() []Field {
	var out []Field
	for _, cat := range c.categories {
		out = append(out, cat.Fields...)
	}
	return out
}

// ItemFields returns every line-item field in catalog order
func (c *Catalog) ItemFields() []Field {
	return append([]Field(nil), c.items...)
}

// DefaultHeaderIDs is the header selection used when the caller gives none
func (c *Catalog) DefaultHeaderIDs() []string {
	return append([]string(nil), c.defaultHead...)
}

// DefaultItemIDs is the item selection used when the caller gives none
func (c *Catalog) DefaultItemIDs() []string {
	return append([]string(nil), c.defaultItems...)
}

// SelectHeader resolves ids to header fields in catalog order.
// Unknown and duplicate ids are dropped.
func (c *Catalog) SelectHeader(ids []string) []Field {
	return selectFields(ids, c.header, c.headerOrder)
}

// SelectItems resolves ids to item fields in catalog order.
// Unknown and duplicate ids are dropped.
func (c *Catalog) SelectItems(ids []string) []Field {
	return selectFields(ids, c.item, c.itemOrder)
}

// UnknownHeader returns the ids that are not header fields
func (c *Catalog) UnknownHeader(ids []string) []string {
	return unknown(ids, c.header)
}

// UnknownItems returns the ids that are not item fields
func (c *Catalog) UnknownItems(ids []string) []string {
	return unknown(ids, c.item)
}

// Labels returns the labels of fields, optionally filtered by kind
func Labels(fields []Field, kinds ...format.Kind) []string {
	var out []string
	for _, f := range fields {
		if len(kinds) == 0 || hasKind(kinds, f.Kind) {
			out = append(out, f.Label)
		}
	}
	return out
}

func selectFields(ids []string, table map[string]Field, order map[string]int) []Field {
	picked := make([]Field, len(order))
	set := make([]bool, len(order))
	for _, id := range ids {
		f, ok := table[id]
		if !ok {
			continue
		}
		picked[order[id]] = f
		set[order[id]] = true
	}

	out := make([]Field, 0, len(ids))
	for i, f := range picked {
		if set[i] {
			out = append(out, f)
		}
	}
	return out
}

func unknown(ids []string, table map[string]Field) []string {
	var out []string
	for _, id := range ids {
		if _, ok := table[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func hasKind(kinds []format.Kind, k format.Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
