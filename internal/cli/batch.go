package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"claimpilot/internal/ingest"
	"claimpilot/internal/llm"
	"claimpilot/internal/logger"
	"claimpilot/internal/model"
	"claimpilot/internal/pipeline"
	"claimpilot/internal/worker"
)

var batchWorkers int

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Adjudicate a directory of claims concurrently",
	Long: `Batch processes every claim folder under a directory. Each folder holds:
  description.txt   free-text claim description (required)
  metadata.txt      optional free-text metadata
plus any number of supporting documents.

Claims are independent, so they run in parallel; per-claim results are
unchanged by concurrency. Output is a JSON array in folder-name order.

Example:
  claimpilot batch ./claims --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent claims (default from config)")
}

// batchOutcome is one line of the batch report.
type batchOutcome struct {
	Claim    string               `json:"claim"`
	Decision *model.ClaimDecision `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if batchWorkers > 0 {
		cfg.Concurrency.Workers = batchWorkers
	}
	log := logger.Init(cfg.Log)

	claims, err := collectClaims(args[0])
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		return fmt.Errorf("no claim folders under %s", args[0])
	}

	gw, err := llm.NewGateway(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize inference gateway: %w", err)
	}
	ocr := ingest.NewServiceClient(cfg.OCR.BaseURL, time.Duration(cfg.OCR.Timeout)*time.Second)
	pipe := pipeline.New(cfg, gw, ocr, nil, log)

	log.Info("processing claims", "count", len(claims), "workers", cfg.Concurrency.Workers)

	results := worker.Run(context.Background(), cfg.Concurrency.Workers, claims,
		func(ctx context.Context, c model.Claim) (*model.ClaimDecision, error) {
			return pipe.Run(ctx, c)
		})

	outcomes := make([]batchOutcome, len(results))
	failed := 0
	for i, r := range results {
		outcomes[i] = batchOutcome{Claim: claimFolderName(claims[i])}
		if r.Err != nil {
			outcomes[i].Error = r.Err.Error()
			failed++
			continue
		}
		outcomes[i].Decision = r.Value
	}

	out, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode batch report: %w", err)
	}
	fmt.Println(string(out))

	if failed > 0 {
		return fmt.Errorf("%d of %d claims failed", failed, len(claims))
	}
	return nil
}

// collectClaims builds one Claim per subdirectory of dir, sorted by name.
func collectClaims(dir string) ([]model.Claim, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read claims directory: %w", err)
	}

	var claims []model.Claim
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folder := filepath.Join(dir, e.Name())

		desc, err := os.ReadFile(filepath.Join(folder, "description.txt"))
		if err != nil {
			return nil, fmt.Errorf("claim %s: description.txt: %w", e.Name(), err)
		}

		claim := model.Claim{
			ID:          uuid.NewString(),
			Description: strings.TrimSpace(string(desc)),
		}
		if meta, err := os.ReadFile(filepath.Join(folder, "metadata.txt")); err == nil {
			claim.Metadata = strings.TrimSpace(string(meta))
		}

		docs, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("claim %s: %w", e.Name(), err)
		}
		for _, d := range docs {
			if d.IsDir() || d.Name() == "description.txt" || d.Name() == "metadata.txt" {
				continue
			}
			claim.Files = append(claim.Files, filepath.Join(folder, d.Name()))
		}
		sort.Strings(claim.Files)

		claims = append(claims, claim)
	}
	return claims, nil
}

// claimFolderName recovers the folder label for reporting.
func claimFolderName(c model.Claim) string {
	if len(c.Files) > 0 {
		return filepath.Base(filepath.Dir(c.Files[0]))
	}
	return c.ID
}
