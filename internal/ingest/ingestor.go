package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"claimpilot/internal/model"
)

// Ingestor converts supporting files into normalized processed documents.
// Text files are read verbatim; images go through size-aware downscaling,
// orientation correction and OCR.
type Ingestor struct {
	ocr        OCRClient
	maxImageKB int64
	log        *slog.Logger
}

// NewIngestor creates a new document ingestor.
func NewIngestor(ocr OCRClient, maxImageKB int64, log *slog.Logger) *Ingestor {
	if maxImageKB <= 0 {
		maxImageKB = 500
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ingestor{ocr: ocr, maxImageKB: maxImageKB, log: log}
}

// Ingest processes each file path into exactly one document, preserving input
// order. Extraction failures never abort ingestion: the failed document
// carries a sentinel text payload embedding the error message, so downstream
// stages always receive a document.
func (i *Ingestor) Ingest(ctx context.Context, paths []string) []model.ProcessedDocument {
	docs := make([]model.ProcessedDocument, 0, len(paths))
	i.log.Info("processing documents", "count", len(paths))

	for idx, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		i.log.Info("processing document", "index", idx+1, "total", len(paths), "name", filepath.Base(path))

		doc := model.ProcessedDocument{
			ID:   uuid.NewString(),
			Name: path,
			Ext:  ext,
		}

		text, err := i.extract(ctx, path, ext)
		if err != nil {
			i.log.Error("document extraction failed", "name", filepath.Base(path), "error", err)
			doc.Text = fmt.Sprintf("[ERROR: Could not process document - %s]", err)
			doc.ExtractionError = err.Error()
		} else {
			doc.Text = text
		}

		docs = append(docs, doc)
	}

	i.log.Info("document processing complete", "count", len(docs))
	return docs
}

func (i *Ingestor) extract(ctx context.Context, path, ext string) (string, error) {
	if model.IsTextExt(ext) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return i.extractImageText(ctx, path)
}

// extractImageText runs the image preprocessing chain and OCR.
func (i *Ingestor) extractImageText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	fileSizeKB := float64(len(data)) / 1024
	i.log.Debug("image file size", "kb", fileSizeKB)

	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	resized := resizeIfNeeded(img, fileSizeKB, float64(i.maxImageKB))
	if resized != img {
		i.log.Info("resized oversized image",
			"from_kb", int(fileSizeKB), "budget_kb", i.maxImageKB)
	}

	encoded, err := encodeJPEG(resized)
	if err != nil {
		return "", err
	}

	angle, err := i.ocr.Orientation(ctx, encoded)
	if err != nil {
		return "", fmt.Errorf("orientation detection: %w", err)
	}
	if angle != 0 {
		i.log.Info("correcting image orientation", "angle", angle)
		upright := rotate(resized, angle)
		if encoded, err = encodeJPEG(upright); err != nil {
			return "", err
		}
	}

	lines, err := i.ocr.Recognize(ctx, encoded)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}

	content := strings.Join(lines, "\n")
	i.log.Info("ocr extraction complete", "chars", len(content))
	return content, nil
}
