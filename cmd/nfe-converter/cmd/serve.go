package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/nfe-converter/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for converting NF-e files.

The API provides endpoints for:
  - GET  /api/v1/fields                 - List extractable fields
  - POST /api/v1/extract                - Extract records as JSON
  - POST /api/v1/convert                - Convert into a workbook
  - GET  /api/v1/convert/:id            - Conversion details
  - GET  /api/v1/convert/:id/download   - Download the workbook
  - POST /api/v1/validate               - Validate an NF-e document
  - POST /api/v1/info                   - Get file information
  - GET  /health                        - Health check

Examples:
  # Start server on the configured address
  nfe-converter serve

  # Start on custom port in debug mode
  nfe-converter serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(defaultCatalog()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	config := &server.Config{
		Address:        cfg.Server.Address,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		Debug:          cfg.Server.Debug || serverDebug,
		HeaderFields:   cfg.Fields.Header,
		ItemFields:     cfg.Fields.Items,
		Format:         cfg.Output.Format,
		Summary:        cfg.Output.Summary,
		FilePrefix:     cfg.Output.Prefix,
		CacheSize:      cfg.Server.CacheSize,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}
	if readTimeout > 0 {
		config.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		config.WriteTimeout = writeTimeout
	}

	srv := server.NewServer(config, server.WithLogger(log))
	httpServer := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("address", config.Address))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
