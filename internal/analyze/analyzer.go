package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"claimpilot/internal/llm"
	"claimpilot/internal/model"
)

var firstInteger = regexp.MustCompile(`\d+`)

// Analyzer classifies each processed document, extracts type-specific
// structured fields and flags whether the document's format is consistent
// with its claimed authority.
type Analyzer struct {
	gw  llm.Gateway
	log *slog.Logger
}

// NewAnalyzer creates a new document analyzer.
func NewAnalyzer(gw llm.Gateway, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{gw: gw, log: log}
}

// Analyze builds one report per processed document, preserving input order.
// Inference-transport failures propagate to the caller; only parse ambiguity
// within a successful classification response is absorbed (defaulting to
// unknown).
func (a *Analyzer) Analyze(ctx context.Context, docs []model.ProcessedDocument) ([]model.DocumentReport, error) {
	a.log.Info("analyzing documents", "count", len(docs))
	reports := make([]model.DocumentReport, 0, len(docs))

	for _, doc := range docs {
		a.log.Info("analyzing document", "name", doc.Name)

		docType, err := a.classifyType(ctx, doc)
		if err != nil {
			return nil, err
		}

		requiresIssuer := docType.RequiresOfficialIssuer()
		a.log.Info("classified document",
			"type", docType.String(), "requires_official_issuer", requiresIssuer)

		fields, err := a.extractFields(ctx, doc, docType)
		if err != nil {
			return nil, err
		}

		trustworthy := Trustworthy(requiresIssuer, doc.Ext)
		if !trustworthy {
			a.log.Info("document marked untrustworthy",
				"name", doc.Name, "reason", "official issuer required but format is plain text")
		}

		reports = append(reports, model.DocumentReport{
			ProcessedDocument:      doc,
			Type:                   docType,
			RequiresOfficialIssuer: requiresIssuer,
			Trustworthy:            trustworthy,
			FraudFinding:           model.DefaultFraudFinding,
			ExtractedFields:        fields,
		})
	}

	a.log.Info("document analysis complete", "count", len(reports))
	return reports, nil
}

// classifyType asks the model for one of the seven enumerated options and
// scans the response for the first integer token. Parse ambiguity defaults to
// unknown; transport failure does not.
func (a *Analyzer) classifyType(ctx context.Context, doc model.ProcessedDocument) (model.DocumentType, error) {
	prompt := fmt.Sprintf(docTypePromptTemplate, documentBlock(doc))

	resp, err := a.gw.Chat(ctx, analyzerSystemPrompt, prompt)
	if err != nil {
		return 0, fmt.Errorf("classify document type: %w", err)
	}

	return ParseDocumentType(resp, a.log), nil
}

// ParseDocumentType extracts the chosen option from a classification
// response. No integer, or an integer outside [1,7], defaults to unknown
// with a logged warning - never an error.
func ParseDocumentType(response string, log *slog.Logger) model.DocumentType {
	if log == nil {
		log = slog.Default()
	}

	match := firstInteger.FindString(response)
	if match == "" {
		log.Warn("could not extract document type from response, defaulting to unknown")
		return model.DocTypeUnknown
	}

	n, err := strconv.Atoi(match)
	if err != nil || n < 1 || n > 7 {
		log.Warn("invalid document type in response, defaulting to unknown", "value", match)
		return model.DocTypeUnknown
	}

	return model.DocumentType(n)
}

// extractFields runs the structured extraction call for the classified type.
// Extraction is skipped for unknown types and plain-text documents, which
// have no visual structure to recover.
func (a *Analyzer) extractFields(ctx context.Context, doc model.ProcessedDocument, docType model.DocumentType) (any, error) {
	if docType == model.DocTypeUnknown || doc.PlainText() {
		a.log.Info("skipping field extraction", "name", doc.Name)
		return nil, nil
	}

	factory, ok := extractionSchemas[docType]
	if !ok {
		return nil, nil
	}
	out := factory()

	a.log.Info("extracting structured fields", "name", doc.Name, "type", docType.String())
	prompt := fmt.Sprintf(extractionPromptTemplate, documentBlock(doc), schemaPrompt(out))

	if err := a.gw.ChatStructured(ctx, structuredSystemPrompt, prompt, out); err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	return out, nil
}

// Trustworthy is the pure format-consistency check: authoritative documents
// presented as freely-editable plain text cannot be considered genuine
// evidence.
func Trustworthy(requiresOfficialIssuer bool, ext string) bool {
	return !(requiresOfficialIssuer && model.IsTextExt(ext))
}

func documentBlock(doc model.ProcessedDocument) string {
	return fmt.Sprintf("Document name: %s\nContent: %s", doc.Name, doc.Text)
}
