package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/model"
)

func sampleHeaders() []*model.Record {
	return []*model.Record{
		model.RecordOf("Arquivo", "a.xml", "Número NF", "1", "Valor Frete", "R$ 10,00", "Valor Total", "R$ 1.234,50"),
		model.RecordOf("Arquivo", "b.xml", "Número NF", "2", "Valor Frete", "", "Valor Total", "R$ 765,50"),
	}
}

func sampleItems() []*model.Record {
	return []*model.Record{
		model.RecordOf("NF Número", "1", "Arquivo", "a.xml", "Código", "X"),
		model.RecordOf("NF Número", "2", "Arquivo", "b.xml", "Código", "Y", "EAN", "789"),
	}
}

func TestNewTable_ColumnUnion(t *testing.T) {
	table := export.NewTable(sampleItems())

	assert.Equal(t, []string{"NF Número", "Arquivo", "Código", "EAN"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "a.xml", "X", ""}, table.Rows[0])
	assert.Equal(t, []string{"X", "Y"}, table.Column("Código"))
	assert.Nil(t, table.Column("missing"))
	assert.False(t, table.Empty())
	assert.True(t, export.NewTable(nil).Empty())
}

func TestBuildSummary(t *testing.T) {
	metrics := export.BuildSummary(sampleHeaders(), sampleItems(), []string{"Valor Frete", "Valor Total", "Valor Seguro"})

	assert.Equal(t, []export.Metric{
		{Name: "Total de Notas", Value: "2"},
		{Name: "Total de Produtos", Value: "2"},
		{Name: "Total Valor Frete", Value: "R$ 10,00"},
		{Name: "Total Valor Total", Value: "R$ 2.000,00"},
		{Name: "Valor Médio (Valor Total)", Value: "R$ 1.000,00"},
	}, metrics)
}

func TestBuildSummary_RawAndUnparsable(t *testing.T) {
	headers := []*model.Record{
		model.RecordOf("Valor Total", "120.50", "Valor ICMS", "n/a"),
		model.RecordOf("Valor Total", "79.5", "Valor ICMS", "1.00"),
	}

	metrics := export.BuildSummary(headers, nil, []string{"Valor ICMS", "Valor Total"})

	assert.Equal(t, []export.Metric{
		{Name: "Total de Notas", Value: "2"},
		{Name: "Total de Produtos", Value: "0"},
		{Name: "Total Valor Total", Value: "R$ 200,00"},
		{Name: "Valor Médio (Valor Total)", Value: "R$ 100,00"},
	}, metrics)
}

func TestBuildSummary_FirstRowEmpty(t *testing.T) {
	headers := []*model.Record{
		model.RecordOf("Valor Frete", ""),
		model.RecordOf("Valor Frete", "R$ 5,25"),
	}

	metrics := export.BuildSummary(headers, nil, []string{"Valor Frete"})
	require.Len(t, metrics, 3)
	assert.Equal(t, export.Metric{Name: "Total Valor Frete", Value: "R$ 5,25"}, metrics[2])
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteWorkbook(&buf, export.WorkbookInput{
		Headers: sampleHeaders(),
		Items:   sampleItems(),
		Summary: export.BuildSummary(sampleHeaders(), sampleItems(), []string{"Valor Total"}),
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Notas Fiscais", "Produtos", "Resumo"}, f.GetSheetList())

	rows, err := f.GetRows("Notas Fiscais")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Arquivo", "Número NF", "Valor Frete", "Valor Total"}, rows[0])
	assert.Equal(t, "R$ 1.234,50", rows[1][3])

	rows, err = f.GetRows("Produtos")
	require.NoError(t, err)
	assert.Equal(t, []string{"NF Número", "Arquivo", "Código", "EAN"}, rows[0])
	assert.Equal(t, "789", rows[2][3])

	rows, err = f.GetRows("Resumo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Métrica", "Valor"}, rows[0])
	assert.Equal(t, []string{"Total de Notas", "2"}, rows[1])

	width, err := f.GetColWidth("Notas Fiscais", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Arquivo")+2), width)

	styleID, err := f.GetCellStyle("Notas Fiscais", "B1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestWriteWorkbook_OptionalSheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, export.WorkbookInput{Headers: sampleHeaders()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Notas Fiscais"}, f.GetSheetList())
}

func TestWriteWorkbook_WidthCap(t *testing.T) {
	headers := []*model.Record{model.RecordOf("Descrição", strings.Repeat("x", 80))}

	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, export.WorkbookInput{Headers: headers}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth("Notas Fiscais", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(50), width)
}

func TestWriteWorkbook_NoRecords(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteWorkbook(&buf, export.WorkbookInput{Items: sampleItems()})
	assert.ErrorIs(t, err, model.ErrNoRecords)
	assert.Zero(t, buf.Len())
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "NFe_Notas_Fiscais_20240305_140709.xlsx", export.FileName("NFe_Notas_Fiscais", at))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.Document{Invoices: sampleHeaders()[:1]}))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"Arquivo"`), strings.Index(out, `"Valor Total"`), "labels keep record order")

	var decoded struct {
		Invoices []map[string]string `json:"invoices"`
		Items    []map[string]string `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Invoices, 1)
	assert.Equal(t, "R$ 1.234,50", decoded.Invoices[0]["Valor Total"])
	assert.NotNil(t, decoded.Items)
	assert.NotContains(t, out, "summary")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, export.NewTable(sampleHeaders())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Arquivo;Número NF;Valor Frete;Valor Total", lines[0])
	assert.Equal(t, "a.xml;1;R$ 10,00;R$ 1.234,50", lines[1])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteText(&buf, export.NewTable(sampleItems())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NF Número"))
	assert.Contains(t, lines[2], "789")
}
