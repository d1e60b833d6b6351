package nfelib

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/parser/nfe"
	"github.com/rezonia/nfe-converter/internal/processor"
)

// Options configures a Converter
type Options struct {
	// Field ids to extract; see Catalog
	HeaderFields []string
	ItemFields   []string

	// Format renders values in Brazilian conventions
	Format bool
	// Summary adds the summary metrics to results
	Summary bool

	Logger   *zap.Logger
	Progress func(done, total int, source string)
}

// DefaultOptions returns the default selections with formatting and summary on
func DefaultOptions() Options {
	cat := catalog.Default()
	return Options{
		HeaderFields: cat.DefaultHeaderIDs(),
		ItemFields:   cat.DefaultItemIDs(),
		Format:       true,
		Summary:      true,
	}
}

// Result is the outcome of a conversion
type Result struct {
	Invoices []*Record
	Items    []*Record
	Summary  []Metric
	Outcomes []Outcome
}

// Converter extracts records from NF-e sources and exports them
type Converter struct {
	extractor *nfe.Extractor
	options   Options
}

// NewConverter validates the field selections and creates a converter
func NewConverter(opts Options) (*Converter, error) {
	cat := catalog.Default()
	if len(opts.HeaderFields) == 0 {
		return nil, ErrNoHeaderFields
	}
	if unknown := cat.UnknownHeader(opts.HeaderFields); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown invoice fields: %s", strings.Join(unknown, ", "))
	}
	if unknown := cat.UnknownItems(opts.ItemFields); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown item fields: %s", strings.Join(unknown, ", "))
	}

	ex := nfe.NewExtractor(cat,
		nfe.WithHeaderFields(opts.HeaderFields...),
		nfe.WithItemFields(opts.ItemFields...),
		nfe.WithFormatting(opts.Format),
	)
	return &Converter{extractor: ex, options: opts}, nil
}

// NewDefaultConverter creates a converter with DefaultOptions
func NewDefaultConverter() *Converter {
	c, _ := NewConverter(DefaultOptions())
	return c
}

// Convert processes sources in order. ZIP sources are expanded. The result
// is returned even when the error is ErrNoRecords or a context error.
func (c *Converter) Convert(ctx context.Context, sources []Source) (*Result, error) {
	batch := processor.NewBatch(c.extractor,
		processor.WithLogger(c.options.Logger),
		processor.WithProgress(c.options.Progress),
	)

	res, err := batch.Run(ctx, sources)
	out := &Result{
		Invoices: res.Headers,
		Items:    res.Items,
		Outcomes: res.Outcomes,
	}
	if err != nil {
		return out, err
	}

	if c.options.Summary {
		currency := catalog.Labels(c.extractor.HeaderFields(), format.KindCurrency)
		out.Summary = export.BuildSummary(res.Headers, res.Items, currency)
	}
	return out, nil
}

// ConvertReader converts a single XML or ZIP stream
func (c *Converter) ConvertReader(ctx context.Context, name string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: name, Message: "failed to read input", Cause: err}
	}
	return c.Convert(ctx, []Source{{Name: name, Data: data}})
}

// ConvertFiles converts files and directories; directories contribute
// their .xml and .zip files.
func (c *Converter) ConvertFiles(ctx context.Context, paths ...string) (*Result, error) {
	files, err := processor.CollectPaths(paths)
	if err != nil {
		return nil, err
	}
	sources, err := processor.LoadSources(files)
	if err != nil {
		return nil, err
	}
	return c.Convert(ctx, sources)
}

// WriteWorkbook writes res as an xlsx workbook
func (c *Converter) WriteWorkbook(w io.Writer, res *Result) error {
	return export.WriteWorkbook(w, export.WorkbookInput{
		Headers: res.Invoices,
		Items:   res.Items,
		Summary: res.Summary,
	})
}

// WriteJSON writes res as a JSON document
func (c *Converter) WriteJSON(w io.Writer, res *Result) error {
	return export.WriteJSON(w, export.Document{
		Invoices: res.Invoices,
		Items:    res.Items,
		Summary:  res.Summary,
	})
}
