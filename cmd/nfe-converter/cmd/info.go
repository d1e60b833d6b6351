package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/format"
	"github.com/rezonia/nfe-converter/internal/parser/nfe"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about NF-e files",
	Long: `Display information about input files without converting them.

Shows:
  - Detected file format (XML, ZIP)
  - Whether the document is an NF-e, with number, access key and item count
  - ZIP entries
  - File metadata

Examples:
  nfe-converter info nota.xml
  nfe-converter info lote.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := processor.CollectPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	for _, file := range files {
		printFileInfo(file)
		fmt.Println()
	}
	return nil
}

func printFileInfo(filePath string) {
	fmt.Printf("File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}

	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("02/01/2006 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	f := processor.DetectFormat(data)
	fmt.Printf("  Format: %s\n", formatName(f))

	switch f {
	case processor.FormatXML:
		printDocumentInfo("  ", data)
	case processor.FormatZIP:
		entries, err := processor.ExpandZip(data)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			return
		}
		fmt.Printf("  XML entries: %d\n", len(entries))
		for _, e := range entries {
			fmt.Printf("  - %s\n", e.Name)
			if e.Err != nil {
				fmt.Printf("      Error: %v\n", e.Err)
				continue
			}
			printDocumentInfo("      ", e.Data)
		}
	}
}

func printDocumentInfo(indent string, data []byte) {
	report, err := nfe.Inspect(data, "")
	if err != nil {
		fmt.Printf("%sError: %v\n", indent, err)
		return
	}
	if !report.IsInvoice {
		fmt.Printf("%sNF-e: no\n", indent)
		return
	}

	fmt.Printf("%sNF-e: yes\n", indent)
	fmt.Printf("%sNumber: %s\n", indent, report.Number)
	fmt.Printf("%sAccess key: %s\n", indent, report.AccessKey)
	if report.IssuerTaxID != "" {
		fmt.Printf("%sIssuer: %s\n", indent, format.TaxID(report.IssuerTaxID))
	}
	if report.RecipientTaxID != "" {
		fmt.Printf("%sRecipient: %s\n", indent, format.TaxID(report.RecipientTaxID))
	}
	fmt.Printf("%sItems: %d\n", indent, report.Items)
}

func formatName(f processor.Format) string {
	switch f {
	case processor.FormatXML:
		return "XML"
	case processor.FormatZIP:
		return "ZIP archive"
	default:
		return "Unknown"
	}
}
