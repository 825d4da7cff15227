package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"claimpilot/internal/llm"
	"claimpilot/internal/model"
)

// readFile reads the document image from disk (injectable for tests)
var readFile = os.ReadFile

const screenerSystemPrompt = "You are a helpful assistant for insurance document analysis."

const signaturePrompt = `Is there a handwritten signature or an official stamp/seal in this image? Answer only "SIGNATURE" or "SEAL" or "NONE". Do not guess.`

// MissingSignatureFinding is the fraud annotation for official documents
// without a visible signature or seal.
const MissingSignatureFinding = "The document is missing a signature/official seal"

// Screener checks official-issuer image documents for a visible handwritten
// signature or stamp/seal using a vision-capable model.
type Screener struct {
	gw  llm.Gateway
	log *slog.Logger
}

// NewScreener creates a new fraud screener.
func NewScreener(gw llm.Gateway, log *slog.Logger) *Screener {
	if log == nil {
		log = slog.Default()
	}
	return &Screener{gw: gw, log: log}
}

// Screen annotates each report's fraud finding. Only documents that require
// an official issuer and are image-based reach the vision model; everything
// else keeps its default finding untouched. A vision-call failure is logged
// and returned, aborting processing for the claim.
func (s *Screener) Screen(ctx context.Context, reports []model.DocumentReport) ([]model.DocumentReport, error) {
	s.log.Info("running fraud detection", "count", len(reports))

	for i := range reports {
		r := &reports[i]
		if !r.RequiresOfficialIssuer || r.PlainText() {
			continue
		}

		img, err := readFile(r.Name)
		if err != nil {
			s.log.Error("failed to read document image", "name", r.Name, "error", err)
			return nil, fmt.Errorf("read document image: %w", err)
		}

		resp, err := s.gw.ChatVision(ctx, screenerSystemPrompt, signaturePrompt, llm.Attachment{
			Data: img,
			MIME: mimeForExt(r.Ext),
		})
		if err != nil {
			s.log.Error("vision model request failed", "name", r.Name, "error", err)
			return nil, fmt.Errorf("signature detection: %w", err)
		}

		s.log.Debug("signature detection response", "response", resp)
		if strings.Contains(strings.ToLower(resp), "none") {
			r.FraudFinding = MissingSignatureFinding
		}
		s.log.Info("fraud detection result", "name", r.Name, "finding", r.FraudFinding)
	}

	return reports, nil
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
