package model

import "strings"

// DocumentType classifies a supporting document. The numeric values match the
// enumerated options presented to the classification model (1-7).
type DocumentType int

const (
	DocTypeMedicalReport DocumentType = iota + 1
	DocTypePoliceReport
	DocTypeJurySummons
	DocTypeJustificationForDelay
	DocTypePersonalEmergency
	DocTypeProofOfBooking
	DocTypeUnknown
)

// String returns the document type name used in reports.
func (t DocumentType) String() string {
	switch t {
	case DocTypeMedicalReport:
		return "medical_report"
	case DocTypePoliceReport:
		return "police_report"
	case DocTypeJurySummons:
		return "jury_summons"
	case DocTypeJustificationForDelay:
		return "justification_for_delay"
	case DocTypePersonalEmergency:
		return "personal_emergency_report"
	case DocTypeProofOfBooking:
		return "proof_of_booking"
	default:
		return "unknown"
	}
}

// RequiresOfficialIssuer reports whether this document type is expected to
// originate from an authoritative source. Everything except proof of booking
// and unknown documents does.
func (t DocumentType) RequiresOfficialIssuer() bool {
	return t != DocTypeProofOfBooking && t != DocTypeUnknown
}

// IsTextExt reports whether the file extension denotes a freely-editable
// plain-text format.
func IsTextExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".md":
		return true
	}
	return false
}

// ProcessedDocument is the normalized output of document ingestion: one per
// input file, same order, never mutated afterward. When text extraction fails
// the Text field carries a sentinel payload embedding the error message so
// downstream stages always receive a document; ExtractionError preserves the
// failure out-of-band for callers that need the distinction.
type ProcessedDocument struct {
	ID              string `json:"id"`
	Name            string `json:"name"` // Original file path/name
	Text            string `json:"text"` // Extracted content or error sentinel
	Ext             string `json:"file_ext"`
	ExtractionError string `json:"extraction_error,omitempty"`
}

// PlainText reports whether the document was submitted in a plain-text format.
func (d ProcessedDocument) PlainText() bool {
	return IsTextExt(d.Ext)
}

// DefaultFraudFinding is the fraud annotation for documents with no
// signature/seal concern.
const DefaultFraudFinding = "Nothing to report"

// DocumentReport extends a processed document with the analyzer's findings.
// It is built once by the analyzer; the fraud screener may overwrite
// FraudFinding; the decision engine only reads.
type DocumentReport struct {
	ProcessedDocument

	Type                   DocumentType `json:"doc_type"`
	RequiresOfficialIssuer bool         `json:"requires_official_issuer"`
	Trustworthy            bool         `json:"trustworthy"`
	FraudFinding           string       `json:"fraud_detection"`
	ExtractedFields        any          `json:"extracted_fields,omitempty"`
}
