package server

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"claimpilot/internal/model"
	"claimpilot/internal/store"
)

// supportedExtensions restricts uploads to formats the ingestor understands.
var supportedExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	claims := s.app.Group("/claims")
	claims.Post("/", s.submitClaim)
	claims.Get("/", s.listClaims)
	claims.Get("/:id", s.getClaim)
}

// submitClaim accepts a multipart claim submission, runs the pipeline
// synchronously and persists the outcome.
func (s *Server) submitClaim(c *fiber.Ctx) error {
	description := strings.TrimSpace(c.FormValue("description"))
	if description == "" {
		return writeError(c, fiber.StatusBadRequest, "DESCRIPTION_REQUIRED", "description is required")
	}
	metadata := c.FormValue("metadata")

	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "invalid multipart form")
	}
	files := form.File["files"]

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !supportedExtensions[ext] {
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE",
				fmt.Sprintf("unsupported file type: %s (supported: .md, .txt, .png, .jpg, .jpeg, .webp)", fh.Filename))
		}
	}

	claimID := uuid.NewString()
	paths, err := s.saveUploads(c, claimID, files)
	if err != nil {
		s.log.Error("failed to store uploads", "claim_id", claimID, "error", err)
		return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "could not store uploaded files")
	}

	claim := model.Claim{
		ID:          claimID,
		Description: description,
		Metadata:    metadata,
		Files:       paths,
	}

	rec := &model.ClaimRecord{
		ClaimID:     claimID,
		CreatedAt:   time.Now().UTC(),
		Description: description,
		Metadata:    metadata,
		Documents:   paths,
	}

	result, err := s.processor.Run(c.UserContext(), claim)
	if err != nil {
		// Error is a terminal outcome distinct from any decision: persist the
		// failed record without one.
		rec.Status = model.StatusFailed
		if saveErr := s.store.Save(c.UserContext(), rec); saveErr != nil {
			s.log.Error("failed to persist failed claim", "claim_id", claimID, "error", saveErr)
		}
		return writeError(c, fiber.StatusBadGateway, "PROCESSING_FAILED",
			"claim processing failed; no decision was reached")
	}

	rec.Status = model.StatusProcessed
	rec.Decision = result.Decision
	rec.Explanation = result.Explanation
	rec.PolicyContext = result.PolicyContext
	rec.Reports = result.Documents

	if err := s.store.Save(c.UserContext(), rec); err != nil {
		s.log.Error("failed to persist claim", "claim_id", claimID, "error", err)
		return writeError(c, fiber.StatusInternalServerError, "PERSISTENCE_FAILED", "could not persist claim record")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"claim_id":    claimID,
		"status":      rec.Status,
		"message":     "Claim processed successfully",
		"decision":    result.Decision,
		"explanation": result.Explanation,
	})
}

// getClaim retrieves a specific claim by ID.
func (s *Server) getClaim(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid claim id format")
	}

	rec, err := s.store.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "claim not found")
		}
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return c.JSON(rec)
}

// listClaims returns all processed claims.
func (s *Server) listClaims(c *fiber.Ctx) error {
	records, err := s.store.List(c.UserContext())
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	if records == nil {
		records = []*model.ClaimRecord{}
	}
	return c.JSON(records)
}

// saveUploads writes each uploaded file into the claim's directory and
// archives a copy when an archiver is configured.
func (s *Server) saveUploads(c *fiber.Ctx, claimID string, files []*multipart.FileHeader) ([]string, error) {
	claimDir := filepath.Join(s.uploadsDir, claimID)
	if err := os.MkdirAll(claimDir, 0o755); err != nil {
		return nil, fmt.Errorf("create claim dir: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		dst := filepath.Join(claimDir, filepath.Base(fh.Filename))
		if err := c.SaveFile(fh, dst); err != nil {
			return nil, fmt.Errorf("save %s: %w", fh.Filename, err)
		}
		paths = append(paths, dst)

		if s.archiver != nil {
			if err := s.archiveUpload(c, claimID, fh); err != nil {
				// Archival is best-effort; the local copy is authoritative.
				s.log.Warn("evidence archival failed", "claim_id", claimID, "file", fh.Filename, "error", err)
			}
		}
	}
	return paths, nil
}

func (s *Server) archiveUpload(c *fiber.Ctx, claimID string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := claimID + "/" + filepath.Base(fh.Filename)
	return s.archiver.Put(c.UserContext(), key, f, fh.Size, contentType)
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"code":    code,
		"message": message,
	})
}
