package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"claimpilot/internal/ingest"
	"claimpilot/internal/llm"
	"claimpilot/internal/logger"
	"claimpilot/internal/model"
	"claimpilot/internal/pipeline"
)

var (
	processDescription string
	processMetadata    string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [documents...]",
	Short: "Adjudicate a single claim from local files",
	Long: `Process runs one claim through the full adjudication pipeline and prints
the decision as JSON. Supporting documents are local file paths; text files
are read verbatim and images go through OCR.

Example:
  claimpilot process --description "My flight was cancelled due to a strike" \
      booking.pdf.txt cancellation_notice.png`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processDescription, "description", "d", "", "free-text claim description (required)")
	processCmd.Flags().StringVarP(&processMetadata, "metadata", "m", "", "optional free-text claim metadata")
	_ = processCmd.MarkFlagRequired("description")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := logger.Init(cfg.Log)

	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("document %s: %w", path, err)
		}
	}

	gw, err := llm.NewGateway(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return fmt.Errorf("initialize inference gateway: %w", err)
	}
	ocr := ingest.NewServiceClient(cfg.OCR.BaseURL, time.Duration(cfg.OCR.Timeout)*time.Second)

	pipe := pipeline.New(cfg, gw, ocr, nil, log)

	claim := model.Claim{
		ID:          uuid.NewString(),
		Description: processDescription,
		Metadata:    processMetadata,
		Files:       args,
	}

	decision, err := pipe.Run(context.Background(), claim)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
