package server

import (
	"time"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/processor"
)

// FieldsResponse is the response for the fields endpoint
type FieldsResponse struct {
	Categories    []catalog.Category `json:"categories"`
	Items         []catalog.Field    `json:"items"`
	DefaultHeader []string           `json:"default_header"`
	DefaultItems  []string           `json:"default_items"`
}

// ExtractResponse is the response for the extract endpoint
type ExtractResponse struct {
	Invoices []*model.Record     `json:"invoices"`
	Items    []*model.Record     `json:"items"`
	Summary  []export.Metric     `json:"summary,omitempty"`
	Outcomes []processor.Outcome `json:"outcomes"`
}

// ConvertResponse describes a finished conversion
type ConvertResponse struct {
	ID          string              `json:"id"`
	FileName    string              `json:"file_name"`
	CreatedAt   time.Time           `json:"created_at"`
	Invoices    int                 `json:"invoices"`
	Items       int                 `json:"items"`
	Summary     []export.Metric     `json:"summary,omitempty"`
	Outcomes    []processor.Outcome `json:"outcomes"`
	DownloadURL string              `json:"download_url"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid     bool     `json:"valid"`
	AccessKey string   `json:"access_key,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Format    string `json:"format"`
	Size      int    `json:"size"`
	IsInvoice bool   `json:"is_invoice"`
	Number    string `json:"number,omitempty"`
	AccessKey string `json:"access_key,omitempty"`
	Items     int    `json:"items"`
	Entries   int    `json:"entries,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string              `json:"error"`
	Details  string              `json:"details,omitempty"`
	Outcomes []processor.Outcome `json:"outcomes,omitempty"`
}

// job is a finished conversion kept for download
type job struct {
	response ConvertResponse
	workbook []byte
}
