package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/catalog"
	"github.com/rezonia/nfe-converter/internal/config"
	"github.com/rezonia/nfe-converter/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configPath   string
	envFile      string

	// Loaded in PersistentPreRunE
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nfe-converter",
	Short: "Convert Brazilian NF-e XML files into spreadsheets",
	Long: `NF-e Converter extracts invoice and item fields from Brazilian electronic
invoices (NF-e XML) and exports them as an Excel workbook, JSON or CSV.

Supports:
  - Individual XML files, directories and ZIP archives of XML files
  - Namespaced and unqualified documents, UTF-8 and ISO-8859-1 encodings
  - Brazilian formatting of currency, dates, CNPJ and CPF

Examples:
  # Convert every XML in a folder into a workbook
  nfe-converter convert notas/ -o notas.xlsx

  # Choose the fields to extract
  nfe-converter convert lote.zip --header numero_nf,chave,valor_total --items codigo,valor_total

  # List the available fields
  nfe-converter fields

  # Check access keys and tax ids
  nfe-converter validate notas/*.xml`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer func() {
		if log != nil {
			_ = log.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Report format (table, json, csv)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before NFE_* variables are read")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Missing .env is not an error
	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// setup loads the configuration and builds the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := loaded.ApplyEnv(); err != nil {
		return err
	}
	cfg = loaded

	log, err = logger.New(logger.Options{
		Level:       cfg.Log.Level,
		Verbose:     verbose,
		Development: cfg.Log.Development,
	})
	return err
}

func defaultCatalog() *catalog.Catalog {
	return catalog.Default()
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
