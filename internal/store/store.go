package store

import (
	"context"
	"errors"

	"claimpilot/internal/model"
)

// ErrNotFound is returned when no claim exists for the requested ID.
var ErrNotFound = errors.New("claim not found")

// Store persists claim records keyed by claim ID. Records are written once
// after processing and never updated.
type Store interface {
	// Save persists a claim record.
	Save(ctx context.Context, rec *model.ClaimRecord) error

	// Get retrieves a claim record by ID, or ErrNotFound.
	Get(ctx context.Context, claimID string) (*model.ClaimRecord, error)

	// List returns all persisted claim records.
	List(ctx context.Context) ([]*model.ClaimRecord, error)

	// Close releases any held resources.
	Close() error
}
