package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/rechnung/internal/config"
	"github.com/rezonia/rechnung/internal/documents"
	"github.com/rezonia/rechnung/internal/engine"
	"github.com/rezonia/rechnung/internal/logger"
	"github.com/rezonia/rechnung/internal/server"
	"github.com/rezonia/rechnung/internal/store"
	"github.com/rezonia/rechnung/internal/store/memory"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	documentURL  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the invoice HTTP API server.

The API provides endpoints for:
  - GET/POST /api/v1/invoices              - List and create invoices
  - POST /api/v1/preview                   - Live totals for unsaved items
  - POST /api/v1/invoices/:id/finalize     - Assign number, lock content
  - POST /api/v1/invoices/:id/mark_sent    - Record dispatch
  - POST /api/v1/invoices/:id/mark_paid    - Record payment
  - POST /api/v1/invoices/:id/cancel       - Void a non-terminal invoice
  - POST /api/v1/invoices/:id/duplicate    - Draft copy with fresh dates
  - GET  /api/v1/invoices/:id/download_xml - Rendered XRechnung document
  - GET  /api/v1/invoices/:id/download_pdf - Rendered ZUGFeRD document
  - GET  /health                           - Health check

Flags override their environment counterparts. A .env file in the
working directory is honored.

Examples:
  # Start server on default port
  rechnung serve

  # Start on custom port with a document renderer
  rechnung serve --address :9090 --document-service-url http://renderer:8100

  # Start in debug mode
  rechnung serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: RECHNUNG_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode (env: RECHNUNG_DEBUG)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (env: RECHNUNG_READ_TIMEOUT)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (env: RECHNUNG_WRITE_TIMEOUT)")
	serveCmd.Flags().StringVar(&documentURL, "document-service-url", "", "Document renderer base URL (env: RECHNUNG_DOCUMENT_SERVICE_URL)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serverAddr != "" {
		cfg.Address = serverAddr
	}
	if serverDebug {
		cfg.Debug = true
	}
	if readTimeout > 0 {
		cfg.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		cfg.WriteTimeout = writeTimeout
	}
	if documentURL != "" {
		cfg.DocumentServiceURL = documentURL
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return err
	}
	log := logger.WithComponent("serve")

	st := memory.NewStore()

	var docs store.DocumentService
	if cfg.DocumentServiceURL != "" {
		docs = documents.NewClient(cfg.DocumentServiceURL, documents.WithTimeout(cfg.DocumentServiceTimeout))
		log.Info().Str("url", cfg.DocumentServiceURL).Msg("document service configured")
	} else {
		docs = documents.Unconfigured{}
		log.Warn().Msg("no document service configured, document actions will fail")
	}

	engineOpts := []engine.Option{engine.WithLogger(logger.WithComponent("engine"))}
	if cfg.HeaderCompensation {
		engineOpts = append(engineOpts, engine.WithHeaderCompensation())
	}
	eng := engine.New(st, st, docs, engineOpts...)

	srv := server.NewServer(&server.Config{
		Address:      cfg.Address,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Debug:        cfg.Debug,
	}, eng, server.WithLogger(logger.WithComponent("server")))

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", cfg.Address)
	return srv.Run()
}
