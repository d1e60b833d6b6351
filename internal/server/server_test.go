package server_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-converter/internal/processor"
	"github.com/rezonia/nfe-converter/internal/server"
)

const invoiceXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe">
	<NFe>
		<infNFe Id="NFe35200114200166000187550010000000046550010463">
			<ide><nNF>46</nNF><serie>1</serie><dhEmi>2024-01-15T10:30:00-03:00</dhEmi></ide>
			<emit><CNPJ>11222333000181</CNPJ><xNome>Comercial Exemplo</xNome></emit>
			<dest><CPF>52998224725</CPF><xNome>João</xNome></dest>
			<det nItem="1"><prod><cProd>A1</cProd><vProd>100.00</vProd></prod></det>
			<det nItem="2"><prod><cProd>B2</cProd><vProd>15.50</vProd></prod></det>
			<det nItem="3"><prod><cProd>C3</cProd><vProd>5.00</vProd></prod></det>
			<total><ICMSTot><vProd>120.50</vProd><vNF>120.50</vNF></ICMSTot></total>
		</infNFe>
	</NFe>
</nfeProc>`

var fixedTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newTestServer(mod ...func(*server.Config)) *server.Server {
	config := &server.Config{
		Address:   ":8080",
		Debug:     true,
		Format:    true,
		Summary:   true,
		CacheSize: 4,
	}
	for _, m := range mod {
		m(config)
	}
	return server.NewServer(config, server.WithClock(func() time.Time { return fixedTime }))
}

func do(t *testing.T, srv *server.Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, url string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestFieldsEndpoint(t *testing.T) {
	w := do(t, newTestServer(), httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response server.FieldsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Categories, 4)
	assert.Len(t, response.Items, 9)
	assert.Len(t, response.DefaultHeader, 12)
	assert.Contains(t, response.DefaultItems, "codigo")
}

func TestExtractEndpoint_RawBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract?name=nota.xml", bytes.NewReader([]byte(invoiceXML)))
	req.Header.Set("Content-Type", "application/xml")
	w := do(t, newTestServer(), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Invoices, 1)
	inv := response.Invoices[0]
	assert.Equal(t, "nota.xml", inv.Get("Arquivo"))
	assert.Equal(t, "46", inv.Get("Número NF"))
	assert.Equal(t, "529.982.247-25", inv.Get("CNPJ/CPF Destinatário"))
	assert.Equal(t, "R$ 120,50", inv.Get("Valor Total"))
	assert.Equal(t, "Arquivo", inv.Labels()[0])

	require.Len(t, response.Items, 3)
	assert.Equal(t, "46", response.Items[2].Get("NF Número"))

	require.NotEmpty(t, response.Summary)
	assert.Equal(t, "Total de Notas", response.Summary[0].Name)
	assert.Equal(t, "1", response.Summary[0].Value)

	require.Len(t, response.Outcomes, 1)
	assert.Equal(t, processor.StatusOK, response.Outcomes[0].Status)
}

func TestExtractEndpoint_MultipartWithSelection(t *testing.T) {
	req := multipartRequest(t, "/api/v1/extract",
		map[string]string{"header": "valor_total,numero_nf", "items": "", "format": "false", "summary": "false"},
		map[string]string{"a.xml": invoiceXML, "broken.xml": "not xml"},
	)
	w := do(t, newTestServer(), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response server.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Invoices, 1)
	assert.Equal(t, []string{"Arquivo", "Número NF", "Valor Total"}, response.Invoices[0].Labels())
	assert.Equal(t, "120.50", response.Invoices[0].Get("Valor Total"))
	assert.Empty(t, response.Items)
	assert.Empty(t, response.Summary)

	require.Len(t, response.Outcomes, 2)
	statuses := map[string]processor.Status{}
	for _, o := range response.Outcomes {
		statuses[o.Source] = o.Status
	}
	assert.Equal(t, processor.StatusOK, statuses["a.xml"])
	assert.Equal(t, processor.StatusFailed, statuses["broken.xml"])
}

func TestExtractEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
	}{
		{"empty body", "/api/v1/extract", ""},
		{"empty header selection", "/api/v1/extract?header=", invoiceXML},
		{"unknown header field", "/api/v1/extract?header=numero_nf,bogus", invoiceXML},
		{"unknown item field", "/api/v1/extract?items=nope", invoiceXML},
		{"invalid format flag", "/api/v1/extract?format=maybe", invoiceXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.url, bytes.NewReader([]byte(tt.body)))
			w := do(t, newTestServer(), req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestExtractEndpoint_NoRecords(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte(`<cteProc><CTe/></cteProc>`)))
	w := do(t, newTestServer(), req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "no invoice data extracted", response.Error)
	require.Len(t, response.Outcomes, 1)
	assert.Equal(t, processor.StatusSkipped, response.Outcomes[0].Status)
}

func TestConvertAndDownload(t *testing.T) {
	srv := newTestServer()

	req := multipartRequest(t, "/api/v1/convert", nil, map[string]string{"nota.xml": invoiceXML})
	w := do(t, srv, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "NFe_Notas_Fiscais_20240305_140709.xlsx", created.FileName)
	assert.Equal(t, 1, created.Invoices)
	assert.Equal(t, 3, created.Items)
	assert.Equal(t, "/api/v1/convert/"+created.ID+"/download", created.DownloadURL)

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/convert/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fetched server.ConvertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	w = do(t, srv, httptest.NewRequest(http.MethodGet, created.DownloadURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), created.FileName)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Notas Fiscais", "Produtos", "Resumo"}, f.GetSheetList())
}

func TestConvert_UnknownAndEvicted(t *testing.T) {
	srv := newTestServer(func(c *server.Config) { c.CacheSize = 1 })

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/convert/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/convert/missing/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	ids := make([]string, 2)
	for i := range ids {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", bytes.NewReader([]byte(invoiceXML)))
		w := do(t, srv, req)
		require.Equal(t, http.StatusCreated, w.Code)
		var created server.ConvertResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		ids[i] = created.ID
	}
	assert.NotEqual(t, ids[0], ids[1])

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/convert/"+ids[0], nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/v1/convert/"+ids[1], nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer()

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte(invoiceXML))))
	require.Equal(t, http.StatusOK, w.Code)
	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid, "errors: %v", response.Errors)
	assert.Equal(t, "35200114200166000187550010000000046550010463", response.AccessKey)

	w = do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader([]byte("<broken"))))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestValidateEndpoint_ErrorResponses(t *testing.T) {
	srv := newTestServer(func(c *server.Config) { c.MaxUploadBytes = 64 })

	tests := []struct {
		name   string
		body   []byte
		status int
		error  string
	}{
		{"not XML", []byte("%PDF-1.4"), http.StatusBadRequest, "only XML validation is supported"},
		{"empty body", nil, http.StatusBadRequest, "empty request body"},
		{"too large", []byte(invoiceXML), http.StatusRequestEntityTooLarge, "failed to read request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/validate", bytes.NewReader(tt.body)))
			assert.Equal(t, tt.status, w.Code)

			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.error, response.Error)
		})
	}
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer()

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/info", bytes.NewReader([]byte(invoiceXML))))
	require.Equal(t, http.StatusOK, w.Code)
	var response server.InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "xml", response.Format)
	assert.True(t, response.IsInvoice)
	assert.Equal(t, "46", response.Number)
	assert.Equal(t, 3, response.Items)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"a.xml", "b.xml", "c.txt"} {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(invoiceXML))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	w = do(t, srv, httptest.NewRequest(http.MethodPost, "/api/v1/info", bytes.NewReader(buf.Bytes())))
	require.Equal(t, http.StatusOK, w.Code)
	response = server.InfoResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "zip", response.Format)
	assert.Equal(t, 2, response.Entries)
	assert.Greater(t, response.Size, 0)
}
