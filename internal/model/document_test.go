package model

import "testing"

func TestDecisionValid(t *testing.T) {
	for _, d := range []Decision{DecisionApprove, DecisionDeny, DecisionUncertain} {
		if !d.Valid() {
			t.Errorf("Expected %s to be valid", d)
		}
	}
	for _, d := range []Decision{"", "MAYBE", "approve"} {
		if d.Valid() {
			t.Errorf("Expected %q to be invalid", d)
		}
	}
}

func TestDocumentTypeRequiresOfficialIssuer(t *testing.T) {
	official := []DocumentType{
		DocTypeMedicalReport, DocTypePoliceReport, DocTypeJurySummons,
		DocTypeJustificationForDelay, DocTypePersonalEmergency,
	}
	for _, dt := range official {
		if !dt.RequiresOfficialIssuer() {
			t.Errorf("Expected %s to require an official issuer", dt)
		}
	}
	for _, dt := range []DocumentType{DocTypeProofOfBooking, DocTypeUnknown} {
		if dt.RequiresOfficialIssuer() {
			t.Errorf("Expected %s not to require an official issuer", dt)
		}
	}
}

func TestIsTextExt(t *testing.T) {
	for _, ext := range []string{".txt", ".md", ".TXT", ".MD"} {
		if !IsTextExt(ext) {
			t.Errorf("Expected %s to be a text extension", ext)
		}
	}
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp", ""} {
		if IsTextExt(ext) {
			t.Errorf("Expected %s not to be a text extension", ext)
		}
	}
}

func TestDocumentTypeString(t *testing.T) {
	if got := DocTypeMedicalReport.String(); got != "medical_report" {
		t.Errorf("Expected medical_report, got %s", got)
	}
	if got := DocumentType(99).String(); got != "unknown" {
		t.Errorf("Expected unknown for out-of-range type, got %s", got)
	}
}
