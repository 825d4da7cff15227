package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"claimpilot/internal/analyze"
	"claimpilot/internal/decide"
	"claimpilot/internal/fraud"
	"claimpilot/internal/ingest"
	"claimpilot/internal/llm"
	"claimpilot/internal/model"
	"claimpilot/internal/policy"
)

// State identifies a position in the adjudication state machine. Exactly one
// of StateDeniedEarly and StateDecided terminates a successful run; StateErrored
// terminates a failed one.
type State string

const (
	StateStart             State = "start"
	StateSectionResolved   State = "section_resolved"
	StateDocumentsIngested State = "documents_ingested"
	StateDocumentsAnalyzed State = "documents_analyzed"
	StateFraudScreened     State = "fraud_screened"
	StateDecided           State = "decided"
	StateDeniedEarly       State = "denied_early"
	StateErrored           State = "errored"
)

// Stage component contracts, defined consumer-side so tests can substitute
// counting fakes.

type sectionSelector interface {
	Select(ctx context.Context, claimDescription string) (*model.PolicyContext, string, error)
}

type documentIngestor interface {
	Ingest(ctx context.Context, paths []string) []model.ProcessedDocument
}

type documentAnalyzer interface {
	Analyze(ctx context.Context, docs []model.ProcessedDocument) ([]model.DocumentReport, error)
}

type fraudScreener interface {
	Screen(ctx context.Context, reports []model.DocumentReport) ([]model.DocumentReport, error)
}

type decisionEngine interface {
	Decide(ctx context.Context, claimDescription string, reports []model.DocumentReport, policy *model.PolicyContext, metadata string) (*decide.DecisionResult, error)
}

// Pipeline sequences policy-section identification, document understanding,
// fraud screening and final policy reasoning for one claim, enforcing the
// early-exit gates.
type Pipeline struct {
	selector sectionSelector
	ingestor documentIngestor
	analyzer documentAnalyzer
	screener fraudScreener
	engine   decisionEngine
	metrics  *Metrics
	log      *slog.Logger
}

// New creates a pipeline wired to the given inference gateway and OCR client.
func New(cfg *model.Config, gw llm.Gateway, ocr ingest.OCRClient, metrics *Metrics, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		selector: policy.NewSelector(gw, log),
		ingestor: ingest.NewIngestor(ocr, cfg.Pipeline.MaxImageKB, log),
		analyzer: analyze.NewAnalyzer(gw, log),
		screener: fraud.NewScreener(gw, log),
		engine:   decide.NewEngine(gw, log),
		metrics:  metrics,
		log:      log,
	}
}

// run carries one claim's intermediate artifacts through the state machine.
type run struct {
	state  State
	claim  model.Claim
	policy *model.PolicyContext

	rationale string // selector's explanation, used verbatim on uncovered denial
	denial    string // explanation for an early-exit denial

	docs     []model.ProcessedDocument
	reports  []model.DocumentReport
	decision *decide.DecisionResult
}

// Run processes one claim end to end. The returned ClaimDecision is the only
// decision ever produced for the claim: either an early-exit denial or the
// decision engine's verdict, never both. Any fatal stage error terminates the
// run with no partial decision.
func (p *Pipeline) Run(ctx context.Context, claim model.Claim) (*model.ClaimDecision, error) {
	r := &run{state: StateStart, claim: claim}

	for r.state != StateDecided && r.state != StateDeniedEarly {
		next, err := p.step(ctx, r)
		if err != nil {
			r.state = StateErrored
			p.metrics.RecordOutcome("error")
			p.log.Error("claim processing failed", "claim_id", claim.ID, "error", err)
			return nil, fmt.Errorf("claim %s: %w", claim.ID, err)
		}
		r.state = next
	}

	result := r.result()
	p.metrics.RecordOutcome(strings.ToLower(string(result.Decision)))
	return result, nil
}

// step executes the transition out of the current state.
func (p *Pipeline) step(ctx context.Context, r *run) (State, error) {
	switch r.state {
	case StateStart:
		defer p.observe("select_section", time.Now())
		pc, rationale, err := p.selector.Select(ctx, r.claim.Description)
		if err != nil {
			return StateErrored, err
		}
		r.policy, r.rationale = pc, rationale
		if Uncovered(pc) {
			r.denial = rationale
			return StateDeniedEarly, nil
		}
		return StateSectionResolved, nil

	case StateSectionResolved:
		defer p.observe("ingest", time.Now())
		r.docs = p.ingestor.Ingest(ctx, r.claim.Files)
		return StateDocumentsIngested, nil

	case StateDocumentsIngested:
		defer p.observe("analyze", time.Now())
		reports, err := p.analyzer.Analyze(ctx, r.docs)
		if err != nil {
			return StateErrored, err
		}
		r.reports = reports
		return StateDocumentsAnalyzed, nil

	case StateDocumentsAnalyzed:
		if name, ok := FirstUntrustworthy(r.reports); ok {
			r.denial = fmt.Sprintf(
				"Supporting document that requires official issuer is in invalid format (free text): %s", name)
			return StateDeniedEarly, nil
		}
		defer p.observe("screen", time.Now())
		reports, err := p.screener.Screen(ctx, r.reports)
		if err != nil {
			return StateErrored, err
		}
		r.reports = reports
		return StateFraudScreened, nil

	case StateFraudScreened:
		defer p.observe("decide", time.Now())
		decision, err := p.engine.Decide(ctx, r.claim.Description, r.reports, r.policy, r.claim.Metadata)
		if err != nil {
			return StateErrored, err
		}
		r.decision = decision
		return StateDecided, nil
	}

	return StateErrored, fmt.Errorf("invalid pipeline state %q", r.state)
}

// result assembles the terminal claim-decision record.
func (r *run) result() *model.ClaimDecision {
	policyText := ""
	if r.policy != nil {
		policyText = r.policy.Text
	}

	reports := r.reports
	if reports == nil {
		reports = []model.DocumentReport{}
	}

	if r.state == StateDeniedEarly {
		return &model.ClaimDecision{
			Decision:      model.DecisionDeny,
			Explanation:   r.denial,
			PolicyContext: policyText,
			Documents:     reports,
		}
	}

	return &model.ClaimDecision{
		Decision:      r.decision.Decision,
		Explanation:   r.decision.ShortExplanation,
		PolicyContext: policyText,
		Documents:     reports,
	}
}

func (p *Pipeline) observe(stage string, start time.Time) {
	p.metrics.ObserveStage(stage, time.Since(start))
}

// Uncovered is the transition guard for the first early-exit gate: no
// applicable policy section means immediate denial.
func Uncovered(pc *model.PolicyContext) bool {
	return pc == nil
}

// FirstUntrustworthy is the transition guard for the second early-exit gate.
// It returns the name of the first untrustworthy document, if any.
func FirstUntrustworthy(reports []model.DocumentReport) (string, bool) {
	for _, r := range reports {
		if !r.Trustworthy {
			return r.Name, true
		}
	}
	return "", false
}
