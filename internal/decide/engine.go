package decide

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"claimpilot/internal/llm"
	"claimpilot/internal/model"
)

const engineSystemPrompt = "You are a helpful travel insurance claim assistant. Always respond with valid JSON."

const decisionPromptTemplate = `You are an insurance claim policy expert. You will be given three inputs:

1. Policy - the official insurance policy describing what is required for this type of covered claim, including any exclusions.
2. Claim - description of what happened provided by the claimant.
3. Supporting documents - The documents uploaded by the claimant to support the claim.

Your task is to analyze the claim against the policy and the supporting documents, and then make a decision: APPROVE, DENY, or UNCERTAIN.
References to the current date indicate the date on which the claim was submitted for analysis. Only use this information to check for late reporting.

Fact-check the claim against all supporting documents:
- Verify names, dates, and reason/incident (or equivalent key details) mentioned in the claim. Pay special attention to the patient name in medical documents.
- A claim is fully verifiable only if all elements are confirmed by the documents.
- A medical report stating the person is healthy/apt does not constitute a covered reason and the claim MUST be automatically denied

Decision guidelines:
- DENY: If any required document is missing, the claim cannot be fully verified or is not covered under the policy. Do not deny solely for document validity concerns flagged as suspicious (e.g., missing signature); treat these as UNCERTAIN instead.
- APPROVE: If all required elements are present, the claim is fully verifiable, and there are no inconsistencies, ambiguities, or exclusions.
- UNCERTAIN: If all required elements are present but the fraud detection states a signature is missing OR it is questionable if the claim is covered under the policy (both by reason and timing)

Policy:
%s

Claim:
%s

Supporting documents analysis:
%s
%s
Justify your choice referencing the claim and the documents.`

const documentSeparator = "\n\n--------\n\n"

// DecisionResult is the structured result shape of the final policy call.
type DecisionResult struct {
	Decision         model.Decision `json:"decision"`
	ShortExplanation string         `json:"short_explanation"`
}

// Engine synthesizes claim description, policy text and the per-document
// analysis into a final verdict. The decision rules are executed by the
// model; the engine only assembles context and issues the single structured
// call.
type Engine struct {
	gw  llm.Gateway
	log *slog.Logger
}

// NewEngine creates a new decision engine.
func NewEngine(gw llm.Gateway, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{gw: gw, log: log}
}

// Decide issues the final structured inference call and returns the verdict
// with a short explanation. Inference failures propagate to the caller.
func (e *Engine) Decide(ctx context.Context, claimDescription string, reports []model.DocumentReport, policy *model.PolicyContext, metadata string) (*DecisionResult, error) {
	e.log.Info("preparing document analysis report for policy expert")

	policyText := ""
	if policy != nil {
		policyText = policy.Text
	}

	metadataBlock := ""
	if metadata != "" {
		metadataBlock = fmt.Sprintf("Metadata:\n%s", metadata)
	}

	prompt := fmt.Sprintf(decisionPromptTemplate,
		policyText,
		claimDescription,
		documentAnalysisReport(reports),
		metadataBlock,
	)

	var result DecisionResult
	if err := e.gw.ChatStructured(ctx, engineSystemPrompt, prompt, &result); err != nil {
		return nil, fmt.Errorf("policy decision: %w", err)
	}
	if !result.Decision.Valid() {
		return nil, fmt.Errorf("policy decision: model returned invalid decision %q", result.Decision)
	}

	e.log.Info("policy expert decision",
		"decision", result.Decision, "explanation", result.ShortExplanation)
	return &result, nil
}

// documentAnalysisReport renders one consolidated block per report: its name,
// its best-available content (structured fields when extracted, raw text
// otherwise) and its fraud finding.
func documentAnalysisReport(reports []model.DocumentReport) string {
	blocks := make([]string, 0, len(reports))
	for _, r := range reports {
		content := r.Text
		if r.ExtractedFields != nil {
			if b, err := json.Marshal(r.ExtractedFields); err == nil {
				content = string(b)
			}
		}
		blocks = append(blocks, fmt.Sprintf(
			"Document name: %s\nContent: %s\nFraud detection report: %s",
			r.Name, content, r.FraudFinding,
		))
	}
	return strings.Join(blocks, documentSeparator)
}
