package analyze

import (
	"fmt"
	"reflect"
	"strings"

	"claimpilot/internal/model"
)

// extractionSchemas is the static document type -> result shape table. Each
// factory returns a fresh pointer to the record the structured extraction
// call must fill. Unknown has no entry: no extraction is attempted for it.
var extractionSchemas = map[model.DocumentType]func() any{
	model.DocTypeMedicalReport:         func() any { return &model.MedicalReportFields{} },
	model.DocTypePoliceReport:          func() any { return &model.PoliceReportFields{} },
	model.DocTypeJurySummons:           func() any { return &model.JurySummonsFields{} },
	model.DocTypeJustificationForDelay: func() any { return &model.JustificationForDelayFields{} },
	model.DocTypePersonalEmergency:     func() any { return &model.PersonalEmergencyFields{} },
	model.DocTypeProofOfBooking:        func() any { return &model.ProofOfBookingFields{} },
}

// schemaPrompt renders the target record shape as a textual field listing for
// the extraction prompt, so the model sees the exact field set it must fill.
func schemaPrompt(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", t.Name())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "" {
			name = f.Name
		}
		fmt.Fprintf(&b, "    %s: string or null\n", name)
	}
	return b.String()
}

const analyzerSystemPrompt = "You are a helpful insurance claim assistant."

const structuredSystemPrompt = "You are a helpful travel insurance claim assistant. Always respond with valid JSON."

const docTypePromptTemplate = `You are an assistant that identifies the document type for a given document.

Options:
1. Medical document
2. Police report
3. Jury summon letter
4. Documentation explaining the cause of a delay
5. Other similar official documents
6. Proof of booking (reservations, tickets, appointments, etc.)
7. None of the above

Analyze the following document:

%s

Answer with the chosen option number. Do not provide explanations.`

const extractionPromptTemplate = `You are given a document and a schema. The schema defines fields that may be present in the document.

Your task:
1. Extract all information from the document that corresponds to the fields in that schema.
2. Do not infer or guess any information. Use only what is explicitly in the document and fill as many values as you can.

Document:
%s

Schema:
%s

You MUST always return the chosen schema, even if you extract none or only a few fields`
