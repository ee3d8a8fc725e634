package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *DB and by pgx pools and transactions.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Run is one row of the sync ledger.
type Run struct {
	ID             uuid.UUID `db:"id"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
	Found          int       `db:"found"`
	Downloaded     int       `db:"downloaded"`
	Existing       int       `db:"existing"`
	Failed         int       `db:"failed"`
	PublishOutcome string    `db:"publish_outcome"`
	ErrorMessage   *string   `db:"error_message"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS wishlist_run (
		id              UUID PRIMARY KEY,
		started_at      TIMESTAMPTZ NOT NULL,
		finished_at     TIMESTAMPTZ NOT NULL,
		found           INTEGER NOT NULL,
		downloaded      INTEGER NOT NULL,
		existing        INTEGER NOT NULL,
		failed          INTEGER NOT NULL,
		publish_outcome TEXT NOT NULL,
		error_message   TEXT
	)`

// RunRepository records sync runs.
type RunRepository struct {
	db Execer
}

func NewRunRepository(db Execer) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create wishlist_run table: %w", err)
	}
	return nil
}

func (r *RunRepository) Record(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	query := `
		INSERT INTO wishlist_run (
			id, started_at, finished_at, found, downloaded,
			existing, failed, publish_outcome, error_message
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)`

	_, err := r.db.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.Found, run.Downloaded,
		run.Existing, run.Failed, run.PublishOutcome, run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}
