// Package processor drives extraction over a batch of XML and ZIP sources.
package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/parser/nfe"
)

// Status is the per-document result of a batch run
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
)

// Outcome reports what happened to one document
type Outcome struct {
	Source  string `json:"source"`
	Status  Status `json:"status"`
	Items   int    `json:"items"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Result holds the aggregated records of a batch run
type Result struct {
	Headers  []*model.Record
	Items    []*model.Record
	Outcomes []Outcome
}

// Count returns the number of outcomes with the given status
func (r *Result) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Problems returns the failed and warning outcomes
func (r *Result) Problems() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusWarning {
			out = append(out, o)
		}
	}
	return out
}

// ProgressFunc is called after each top-level source
type ProgressFunc func(done, total int, source string)

// Batch runs an Extractor over many sources, one at a time
type Batch struct {
	extractor *nfe.Extractor
	logger    *zap.Logger
	progress  ProgressFunc
}

// BatchOption configures a Batch
type BatchOption func(*Batch)

// WithLogger sets the logger used for per-document reports
func WithLogger(l *zap.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithProgress sets a progress callback
func WithProgress(fn ProgressFunc) BatchOption {
	return func(b *Batch) {
		b.progress = fn
	}
}

// NewBatch creates a batch driver around ex
func NewBatch(ex *nfe.Extractor, opts ...BatchOption) *Batch {
	b := &Batch{
		extractor: ex,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes sources in order. ZIP sources are expanded into their XML
// entries. A document that fails is reported in Outcomes and does not stop
// the run. Cancellation is checked between sources; the partial result is
// returned with ctx.Err(). A run that yields no header record returns
// model.ErrNoRecords along with the outcomes.
func (b *Batch) Run(ctx context.Context, sources []Source) (*Result, error) {
	res := &Result{}
	if len(b.extractor.HeaderFields()) == 0 {
		return res, model.ErrNoHeaderFields
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if DetectFormat(src.Data) == FormatZIP {
			b.runZip(res, src)
		} else {
			b.runDocument(res, src)
		}

		if b.progress != nil {
			b.progress(i+1, len(sources), src.Name)
		}
	}

	if len(res.Headers) == 0 {
		return res, model.ErrNoRecords
	}
	return res, nil
}

func (b *Batch) runZip(res *Result, src Source) {
	entries, err := ExpandZip(src.Data)
	if err != nil {
		b.fail(res, src.Name, "invalid zip archive", err)
		return
	}
	if len(entries) == 0 {
		b.logger.Warn("zip has no xml entries", zap.String("file", src.Name))
		res.Outcomes = append(res.Outcomes, Outcome{
			Source:  src.Name,
			Status:  StatusWarning,
			Message: "no XML files found in archive",
		})
		return
	}

	b.logger.Debug("expanded zip", zap.String("file", src.Name), zap.Int("entries", len(entries)))
	for _, entry := range entries {
		if entry.Err != nil {
			b.fail(res, entry.Name, "could not read zip entry", entry.Err)
			continue
		}
		b.runDocument(res, entry)
	}
}

func (b *Batch) runDocument(res *Result, src Source) {
	header, err := b.extractor.ExtractHeader(src.Data, src.Name)
	if err != nil {
		b.fail(res, src.Name, "could not read XML", err)
		return
	}
	if header == nil {
		b.logger.Debug("not an NF-e document", zap.String("file", src.Name))
		res.Outcomes = append(res.Outcomes, Outcome{
			Source:  src.Name,
			Status:  StatusSkipped,
			Message: model.ErrNotInvoice.Error(),
			Err:     model.ErrNotInvoice,
		})
		return
	}

	items := b.extractor.ExtractLineItems(src.Data, header)
	res.Headers = append(res.Headers, header)
	res.Items = append(res.Items, items...)
	res.Outcomes = append(res.Outcomes, Outcome{
		Source: src.Name,
		Status: StatusOK,
		Items:  len(items),
	})
	b.logger.Debug("extracted document", zap.String("file", src.Name), zap.Int("items", len(items)))
}

func (b *Batch) fail(res *Result, name, message string, cause error) {
	err := model.NewExtractionError(name, message, cause)
	b.logger.Warn("document failed", zap.String("file", name), zap.Error(err))
	res.Outcomes = append(res.Outcomes, Outcome{
		Source:  name,
		Status:  StatusFailed,
		Message: err.Error(),
		Err:     err,
	})
}
