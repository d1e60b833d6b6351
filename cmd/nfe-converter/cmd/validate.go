package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/nfe-converter/internal/parser/nfe"
	"github.com/rezonia/nfe-converter/internal/processor"
)

var strictValidation bool

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate NF-e XML files",
	Long: `Validate NF-e documents before converting them.

Checks performed:
  - Document contains infNFe
  - Invoice number present
  - Access key has 44 digits and a valid mod-11 check digit
  - Issuer and recipient CNPJ/CPF check digits

ZIP archives are validated entry by entry.

Examples:
  nfe-converter validate nota.xml
  nfe-converter validate notas/ --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat warnings as errors")
}

// ValidationResult is the validation outcome of one document
type ValidationResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	AccessKey string   `json:"access_key,omitempty"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := processor.CollectPaths(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	sources, err := processor.LoadSources(files)
	if err != nil {
		return err
	}

	var results []*ValidationResult
	allValid := true
	for _, src := range sources {
		for _, r := range validateSource(src) {
			results = append(results, r)
			if !r.Valid {
				allValid = false
			}
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateSource(src processor.Source) []*ValidationResult {
	if processor.DetectFormat(src.Data) != processor.FormatZIP {
		return []*ValidationResult{validateDocument(src.Name, src.Data)}
	}

	entries, err := processor.ExpandZip(src.Data)
	if err != nil {
		return []*ValidationResult{{
			File:     src.Name,
			Errors:   []string{fmt.Sprintf("invalid zip archive: %v", err)},
			Warnings: []string{},
		}}
	}
	if len(entries) == 0 {
		return []*ValidationResult{{
			File:     src.Name,
			Valid:    !strictValidation,
			Errors:   []string{},
			Warnings: []string{"archive has no XML files"},
		}}
	}

	results := make([]*ValidationResult, 0, len(entries))
	for _, e := range entries {
		name := src.Name + ":" + e.Name
		if e.Err != nil {
			results = append(results, &ValidationResult{
				File:     name,
				Errors:   []string{fmt.Sprintf("failed to read entry: %v", e.Err)},
				Warnings: []string{},
			})
			continue
		}
		results = append(results, validateDocument(name, e.Data))
	}
	return results
}

func validateDocument(name string, data []byte) *ValidationResult {
	result := &ValidationResult{
		File:     name,
		Errors:   []string{},
		Warnings: []string{},
	}

	report, err := nfe.Inspect(data, name)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Valid = report.Valid()
	result.AccessKey = report.AccessKey
	for _, e := range report.Errors {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Warnings = append(result.Warnings, report.Warnings...)

	if strictValidation && len(result.Warnings) > 0 {
		result.Valid = false
	}
	printVerbose("%s: %d item(s), access key %q\n", name, report.Items, report.AccessKey)
	return result
}
