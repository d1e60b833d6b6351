package export

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/nfe-converter/internal/catalog"
	money "github.com/rezonia/nfe-converter/internal/decimal"
	"github.com/rezonia/nfe-converter/internal/model"
)

// Summary metric names
const (
	MetricInvoices = "Total de Notas"
	MetricItems    = "Total de Produtos"
	MetricColumn   = "Métrica"
	ValueColumn    = "Valor"
)

// Metric is one row of the summary sheet
type Metric struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BuildSummary computes record counts, the total of every header column
// listed in currencyLabels, and the mean invoice total when that column is
// present. Empty cells count as zero; a column holding a value that is not a
// number is left out.
func BuildSummary(headers, items []*model.Record, currencyLabels []string) []Metric {
	metrics := []Metric{
		{Name: MetricInvoices, Value: strconv.Itoa(len(headers))},
		{Name: MetricItems, Value: strconv.Itoa(len(items))},
	}

	table := NewTable(headers)
	var invoiceTotals []decimal.Decimal
	for _, label := range currencyLabels {
		values := table.Column(label)
		if values == nil {
			continue
		}
		amounts, ok := parseAmounts(values)
		if !ok {
			continue
		}
		metrics = append(metrics, Metric{
			Name:  "Total " + label,
			Value: money.FormatBRL(money.Sum(amounts)),
		})
		if label == catalog.InvoiceTotalLabel {
			invoiceTotals = amounts
		}
	}

	if len(invoiceTotals) > 0 {
		metrics = append(metrics, Metric{
			Name:  "Valor Médio (" + catalog.InvoiceTotalLabel + ")",
			Value: money.FormatBRL(money.Mean(invoiceTotals)),
		})
	}
	return metrics
}

func parseAmounts(values []string) ([]decimal.Decimal, bool) {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			out = append(out, money.Zero)
			continue
		}

		var (
			d   decimal.Decimal
			err error
		)
		if strings.HasPrefix(v, money.CurrencyPrefix) {
			d, err = money.ParseBRL(v)
		} else {
			d, err = money.FromString(v)
		}
		if err != nil {
			return nil, false
		}
		out = append(out, d)
	}
	return out, true
}
