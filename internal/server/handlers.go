package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/parser/nfe"
	"github.com/rezonia/nfe-converter/internal/processor"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFields(c *gin.Context) {
	c.JSON(http.StatusOK, FieldsResponse{
		Categories:    s.catalog.Categories(),
		Items:         s.catalog.ItemFields(),
		DefaultHeader: s.catalog.DefaultHeaderIDs(),
		DefaultItems:  s.catalog.DefaultItemIDs(),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	res, metrics, ok := s.runBatch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Invoices: res.Headers,
		Items:    nonNil(res.Items),
		Summary:  metrics,
		Outcomes: res.Outcomes,
	})
}

func (s *Server) handleConvert(c *gin.Context) {
	res, metrics, ok := s.runBatch(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := export.WriteWorkbook(&buf, export.WorkbookInput{
		Headers: res.Headers,
		Items:   res.Items,
		Summary: metrics,
	})
	if err != nil {
		s.logger.Error("workbook generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate workbook", Details: err.Error()})
		return
	}

	id := uuid.NewString()
	created := s.now()
	resp := ConvertResponse{
		ID:          id,
		FileName:    export.FileName(s.filePrefix(), created),
		CreatedAt:   created.UTC(),
		Invoices:    len(res.Headers),
		Items:       len(res.Items),
		Summary:     metrics,
		Outcomes:    res.Outcomes,
		DownloadURL: "/api/v1/convert/" + id + "/download",
	}
	s.jobs.Add(id, &job{response: resp, workbook: buf.Bytes()})
	s.logger.Debug("conversion stored", zap.String("id", id), zap.Int("invoices", resp.Invoices))

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleJob(c *gin.Context) {
	j, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversion not found"})
		return
	}
	c.JSON(http.StatusOK, j.response)
}

func (s *Server) handleDownload(c *gin.Context) {
	j, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "conversion not found"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, j.response.FileName))
	c.Data(http.StatusOK, xlsxMIME, j.workbook)
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	if processor.DetectFormat(body) != processor.FormatXML {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "only XML validation is supported"})
		return
	}

	report, err := nfe.Inspect(body, c.DefaultQuery("name", "upload.xml"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Errors: []string{err.Error()},
		})
		return
	}

	resp := ValidationResponse{
		Valid:     report.Valid(),
		AccessKey: report.AccessKey,
		Warnings:  report.Warnings,
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	f := processor.DetectFormat(body)
	resp := InfoResponse{Format: f.String(), Size: len(body)}

	switch f {
	case processor.FormatXML:
		if report, err := nfe.Inspect(body, "upload.xml"); err == nil {
			resp.IsInvoice = report.IsInvoice
			resp.Number = report.Number
			resp.AccessKey = report.AccessKey
			resp.Items = report.Items
		}
	case processor.FormatZIP:
		entries, err := processor.ExpandZip(body)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid zip archive", Details: err.Error()})
			return
		}
		resp.Entries = len(entries)
	}

	c.JSON(http.StatusOK, resp)
}

// runBatch reads the upload and field selection and runs the batch. On
// failure it writes the error response and returns ok false.
func (s *Server) runBatch(c *gin.Context) (*processor.Result, []export.Metric, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.uploadLimit())

	sources, err := s.readSources(c)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, ErrorResponse{Error: "failed to read upload", Details: err.Error()})
		return nil, nil, false
	}
	if len(sources) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no files uploaded"})
		return nil, nil, false
	}

	ex, summary, err := s.extractorFor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid field selection", Details: err.Error()})
		return nil, nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	res, err := processor.NewBatch(ex, processor.WithLogger(s.logger)).Run(ctx, sources)
	switch {
	case errors.Is(err, model.ErrNoRecords):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:    err.Error(),
			Outcomes: res.Outcomes,
		})
		return nil, nil, false
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "processing failed", Details: err.Error()})
		return nil, nil, false
	}

	var metrics []export.Metric
	if summary {
		currency := catalog.Labels(ex.HeaderFields(), format.KindCurrency)
		metrics = export.BuildSummary(res.Headers, res.Items, currency)
	}
	return res, metrics, true
}

// extractorFor builds the extractor from request parameters, falling back to
// the server configuration.
func (s *Server) extractorFor(c *gin.Context) (*nfe.Extractor, bool, error) {
	header := s.config.HeaderFields
	if header == nil {
		header = s.catalog.DefaultHeaderIDs()
	}
	if v, ok := param(c, "header"); ok {
		header = splitIDs(v)
	}

	items := s.config.ItemFields
	if items == nil {
		items = s.catalog.DefaultItemIDs()
	}
	if v, ok := param(c, "items"); ok {
		items = splitIDs(v)
	}

	if len(header) == 0 {
		return nil, false, model.ErrNoHeaderFields
	}
	if unknown := s.catalog.UnknownHeader(header); len(unknown) > 0 {
		return nil, false, fmt.Errorf("unknown invoice fields: %s", strings.Join(unknown, ", "))
	}
	if unknown := s.catalog.UnknownItems(items); len(unknown) > 0 {
		return nil, false, fmt.Errorf("unknown item fields: %s", strings.Join(unknown, ", "))
	}

	formatting, err := boolParam(c, "format", s.config.Format)
	if err != nil {
		return nil, false, err
	}
	summary, err := boolParam(c, "summary", s.config.Summary)
	if err != nil {
		return nil, false, err
	}

	ex := nfe.NewExtractor(s.catalog,
		nfe.WithHeaderFields(header...),
		nfe.WithItemFields(items...),
		nfe.WithFormatting(formatting),
	)
	return ex, summary, nil
}

func (s *Server) readSources(c *gin.Context) ([]processor.Source, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		var sources []processor.Source
		for _, key := range []string{"files", "file"} {
			for _, fh := range form.File[key] {
				data, err := readFormFile(fh)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", fh.Filename, err)
				}
				sources = append(sources, processor.Source{Name: fh.Filename, Data: data})
			}
		}
		return sources, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	name := c.Query("name")
	if name == "" {
		name = "upload." + processor.DetectFormat(body).String()
	}
	return []processor.Source{{Name: name, Data: body}}, nil
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.uploadLimit())
	body, err := c.GetRawData()
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, ErrorResponse{Error: "failed to read request body", Details: err.Error()})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func (s *Server) filePrefix() string {
	if s.config.FilePrefix != "" {
		return s.config.FilePrefix
	}
	return "NFe_Notas_Fiscais"
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// param reads a query parameter, then a form field
func param(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}

func boolParam(c *gin.Context, key string, fallback bool) (bool, error) {
	v, ok := param(c, key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func nonNil(records []*model.Record) []*model.Record {
	if records == nil {
		return []*model.Record{}
	}
	return records
}
