package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/config"
	"github.com/rezonia/nfe-converter/internal/export"
	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/pkg/nfelib"
)

var (
	outputFile   string
	outputType   string
	headerFields string
	itemFields   string
	noFormat     bool
	noSummary    bool
	timeout      time.Duration
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert NF-e XML files into a spreadsheet",
	Long: `Extract invoice and item fields from NF-e XML files.

Arguments may be XML files, ZIP archives of XML files or directories,
which are searched recursively for .xml and .zip files.

Output types:
  - xlsx:  workbook with "Notas Fiscais", "Produtos" and "Resumo" sheets (default)
  - json:  invoices, items and summary as one document
  - csv:   ';' separated invoices; items go to <output>_produtos.csv
  - table: aligned text on stdout

Examples:
  nfe-converter convert nota.xml
  nfe-converter convert notas/ lote.zip -o janeiro.xlsx
  nfe-converter convert notas/ --to json -o notas.json
  nfe-converter convert notas/ --header numero_nf,data_emissao,valor_total --items ""`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: <prefix>_<timestamp>.xlsx, or stdout for other types)")
	convertCmd.Flags().StringVar(&outputType, "to", "xlsx", "Output type (xlsx, json, csv, table)")
	convertCmd.Flags().StringVar(&headerFields, "header", "", "Comma separated invoice field ids (see 'fields')")
	convertCmd.Flags().StringVar(&itemFields, "items", "", "Comma separated item field ids; empty disables items")
	convertCmd.Flags().BoolVar(&noFormat, "no-format", false, "Keep raw XML values instead of Brazilian formatting")
	convertCmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip the summary sheet")
	convertCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Processing timeout for the whole batch")
}

func runConvert(cmd *cobra.Command, args []string) error {
	switch outputType {
	case "xlsx", "json", "csv", "table":
	default:
		return fmt.Errorf("unsupported output type: %s", outputType)
	}

	opts := nfelib.Options{
		HeaderFields: cfg.Fields.Header,
		ItemFields:   cfg.Fields.Items,
		Format:       cfg.Output.Format && !noFormat,
		Summary:      cfg.Output.Summary && !noSummary,
		Logger:       log,
		Progress: func(done, total int, source string) {
			printVerbose("[%d/%d] %s\n", done, total, source)
		},
	}
	if cmd.Flags().Changed("header") {
		opts.HeaderFields = config.SplitList(headerFields)
	}
	if cmd.Flags().Changed("items") {
		opts.ItemFields = config.SplitList(itemFields)
	}

	converter, err := nfelib.NewConverter(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	printVerbose("Header fields: %s\n", strings.Join(opts.HeaderFields, ", "))
	printVerbose("Item fields: %s\n", strings.Join(opts.ItemFields, ", "))

	res, err := converter.ConvertFiles(ctx, args...)
	if res != nil {
		reportOutcomes(res.Outcomes)
	}
	if errors.Is(err, model.ErrNoRecords) {
		return fmt.Errorf("no invoice data extracted from %d file(s)", len(res.Outcomes))
	}
	if err != nil {
		return err
	}

	if err := writeConversion(converter, res); err != nil {
		return err
	}

	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Converted %d invoice(s) and %d item(s) into %s\n", len(res.Invoices), len(res.Items), outputFile)
		for _, m := range res.Summary {
			printVerbose("  %s: %s\n", m.Name, m.Value)
		}
	}
	return nil
}

func writeConversion(converter *nfelib.Converter, res *nfelib.Result) error {
	if outputType == "xlsx" && outputFile == "" {
		outputFile = export.FileName(cfg.Output.Prefix, time.Now())
	}

	w, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	switch outputType {
	case "xlsx":
		return converter.WriteWorkbook(w, res)
	case "json":
		return converter.WriteJSON(w, res)
	case "csv":
		return writeCSV(w, res)
	default:
		return writeTables(w, res)
	}
}

func writeCSV(w io.Writer, res *nfelib.Result) error {
	if err := export.WriteCSV(w, export.NewTable(res.Invoices)); err != nil {
		return err
	}
	if len(res.Items) == 0 {
		return nil
	}

	if outputFile == "" {
		fmt.Fprintln(w)
		return export.WriteCSV(w, export.NewTable(res.Items))
	}

	itemsPath := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_produtos.csv"
	f, err := os.Create(itemsPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	printVerbose("Items written to %s\n", itemsPath)
	return export.WriteCSV(f, export.NewTable(res.Items))
}

func writeTables(w io.Writer, res *nfelib.Result) error {
	if err := export.WriteText(w, export.NewTable(res.Invoices)); err != nil {
		return err
	}
	if len(res.Items) > 0 {
		fmt.Fprintln(w)
		if err := export.WriteText(w, export.NewTable(res.Items)); err != nil {
			return err
		}
	}
	if len(res.Summary) > 0 {
		fmt.Fprintln(w)
		for _, m := range res.Summary {
			fmt.Fprintf(w, "%s: %s\n", m.Name, m.Value)
		}
	}
	return nil
}

// reportOutcomes prints every document that did not convert cleanly
func reportOutcomes(outcomes []nfelib.Outcome) {
	for _, o := range outcomes {
		switch o.Status {
		case nfelib.StatusOK:
			continue
		case nfelib.StatusSkipped:
			printVerbose("Skipped %s: %s\n", o.Source, o.Message)
		default:
			fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", o.Source, o.Message)
		}
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
