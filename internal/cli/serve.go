package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"claimpilot/internal/ingest"
	"claimpilot/internal/llm"
	"claimpilot/internal/logger"
	"claimpilot/internal/model"
	"claimpilot/internal/pipeline"
	"claimpilot/internal/server"
	"claimpilot/internal/storage"
	"claimpilot/internal/store"
)

var (
	serveHost string
	servePort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the claim-submission HTTP API",
	Long: `Serve starts the HTTP boundary for claim processing:
- POST /claims submits a claim with supporting documents
- GET /claims/:id retrieves a processed claim
- GET /claims lists all claims
- GET /metrics exposes Prometheus metrics

Example:
  claimpilot serve
  claimpilot serve --port 8000
  CLAIMPILOT_LLM_PROVIDER=openai OPENAI_API_KEY=... claimpilot serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := logger.Init(cfg.Log)

	gw, err := llm.NewGateway(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize inference gateway: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !gw.IsAvailable(checkCtx) {
		log.Warn("inference backend is not reachable; claims will fail until it is", "provider", gw.Name())
	}

	ocr := ingest.NewServiceClient(cfg.OCR.BaseURL, time.Duration(cfg.OCR.Timeout)*time.Second)

	metrics, err := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register pipeline metrics: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var archiver storage.Archiver
	if cfg.Archive.Endpoint != "" {
		archiver, err = storage.NewMinIO(cfg.Archive)
		if err != nil {
			return fmt.Errorf("initialize evidence archive: %w", err)
		}
	}

	pipe := pipeline.New(cfg, gw, ocr, metrics, log)

	srv, err := server.New(cfg.Server, pipe, st, archiver, prometheus.DefaultRegisterer, log)
	if err != nil {
		return err
	}

	return srv.Listen()
}

// openStore selects the claim store per configuration.
func openStore(cfg *model.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		st, err := store.NewPostgresStore(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil

	case "disk", "":
		st, err := store.NewDiskStore(cfg.Store.Dir, cfg.Store.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("open disk store: %w", err)
		}
		return st, nil
	}

	return nil, fmt.Errorf("unknown store driver: %s (supported: disk, postgres)", cfg.Store.Driver)
}

// loadConfig merges defaults, the config file, CLAIMPILOT_* env vars and
// well-known provider env vars.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	// Ignore unmarshal errors: defaults remain for any malformed key.
	_ = unmarshalViper(cfg)

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == "ollama" {
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
			cfg.LLM.BaseURL = base
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg
}
