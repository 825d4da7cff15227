package policy

import (
	"context"
	"fmt"
	"log/slog"

	"claimpilot/internal/llm"
	"claimpilot/internal/model"
)

// SectionChoice is the structured result shape for policy-section selection.
type SectionChoice struct {
	Identifier       string `json:"identifier"`
	ShortExplanation string `json:"short_explanation"`
}

// Selector classifies a claim description into one of the covered-scenario
// categories and resolves the applicable policy text.
type Selector struct {
	gw  llm.Gateway
	log *slog.Logger
}

// NewSelector creates a new policy section selector.
func NewSelector(gw llm.Gateway, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{gw: gw, log: log}
}

// Select issues one structured inference call to pick a scenario identifier
// and maps it through the static section table. A nil PolicyContext with nil
// error means no section of the policy applies. Inference failures propagate
// to the caller and terminate claim processing.
func (s *Selector) Select(ctx context.Context, claimDescription string) (*model.PolicyContext, string, error) {
	var choice SectionChoice
	prompt := fmt.Sprintf(selectorPromptTemplate, claimDescription)

	if err := s.gw.ChatStructured(ctx, selectorSystemPrompt, prompt, &choice); err != nil {
		return nil, "", fmt.Errorf("select policy section: %w", err)
	}

	s.log.Info("identified policy section",
		"identifier", choice.Identifier,
		"explanation", choice.ShortExplanation)

	text, ok := SectionText(choice.Identifier)
	if !ok {
		// "D" or anything the table doesn't know: no applicable policy.
		return nil, choice.ShortExplanation, nil
	}

	return &model.PolicyContext{
		Identifier: choice.Identifier,
		Text:       text,
	}, choice.ShortExplanation, nil
}
