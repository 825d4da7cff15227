package model

import "time"

// Claim is a single insurance-reimbursement request. It is immutable once
// submitted; every pipeline stage consumes it read-only.
type Claim struct {
	ID          string   `json:"id"`                 // Generated identifier (UUID)
	Description string   `json:"description"`        // Free-text description of what happened
	Metadata    string   `json:"metadata,omitempty"` // Optional free-text metadata (dates, names, etc.)
	Files       []string `json:"files"`              // Ordered paths of supporting documents
}

// Decision is the terminal verdict for a claim.
type Decision string

const (
	DecisionApprove   Decision = "APPROVE"
	DecisionDeny      Decision = "DENY"
	DecisionUncertain Decision = "UNCERTAIN"
)

// Valid reports whether d is one of the three known verdicts.
func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionDeny, DecisionUncertain:
		return true
	}
	return false
}

// PolicyContext is the resolved policy section for a claim: the covered-reason
// description plus the fixed exclusions block. A nil *PolicyContext means no
// section of the policy applies.
type PolicyContext struct {
	Identifier string `json:"identifier"` // Scenario identifier ("A", "B", "C")
	Text       string `json:"text"`       // Section text + exclusions
}

// ClaimDecision is the terminal artifact of one pipeline run.
type ClaimDecision struct {
	Decision      Decision         `json:"decision"`
	Explanation   string           `json:"explanation"`
	PolicyContext string           `json:"policy_context,omitempty"`
	Documents     []DocumentReport `json:"processed_documents"`
}

// ClaimRecord is the persisted form of a claim and its adjudication outcome,
// keyed by claim ID in the store.
type ClaimRecord struct {
	ClaimID       string           `json:"claim_id"`
	Status        string           `json:"status"` // "processed" or "failed"
	CreatedAt     time.Time        `json:"created_at"`
	Description   string           `json:"description"`
	Metadata      string           `json:"metadata,omitempty"`
	Documents     []string         `json:"documents"`
	Decision      Decision         `json:"decision,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`
	PolicyContext string           `json:"policy_context,omitempty"`
	Reports       []DocumentReport `json:"processed_documents,omitempty"`
}

// Record statuses.
const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)
