package database

import (
	"context"
	"errors"

	"github.com/DedS3t/tycoon-backend/app/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a row changed since it was last read.
	ErrConflict = errors.New("write conflict")
)

// Store is the durable side of a session. The engine only ever talks to it
// through a Tx.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx writes players and session snapshots atomically. WritePlayer expects
// p.Version to be one more than the stored version (or 1 for a new row).
type Tx interface {
	Player(ctx context.Context, id string) (*models.Player, error)
	WritePlayer(ctx context.Context, p *models.Player, columns ...string) error
	WriteSession(ctx context.Context, s *models.GameSession) error
	Commit() error
	Rollback() error
}
