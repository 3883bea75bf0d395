package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// Adjustment is one setter invocation.
type Adjustment struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Channel   string    `json:"channel"`
	Percent   int       `json:"percent"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// AdjustmentRepository provides operations for adjustments.
type AdjustmentRepository struct {
	db *sql.DB
}

// Adjustments returns the adjustment repository for this store.
func (s *Store) Adjustments() *AdjustmentRepository {
	return &AdjustmentRepository{db: s.db}
}

// Create inserts an adjustment.
func (r *AdjustmentRepository) Create(a *Adjustment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO adjustments (id, session_id, channel, percent, success, error, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, nullString(a.SessionID), a.Channel, a.Percent, a.Success, a.Error, a.AppliedAt,
	)
	return err
}

// List returns adjustments newest first, optionally filtered by channel.
// limit <= 0 means no limit.
func (r *AdjustmentRepository) List(channel string, limit int) ([]*Adjustment, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, channel, percent, success, error, applied_at
		 FROM adjustments
		 WHERE ? = '' OR channel = ?
		 ORDER BY applied_at DESC, rowid DESC LIMIT ?`,
		channel, channel, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*Adjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

// Latest returns the most recent successful adjustment for channel.
func (r *AdjustmentRepository) Latest(channel string) (*Adjustment, error) {
	a, err := scanAdjustment(r.db.QueryRow(
		`SELECT id, session_id, channel, percent, success, error, applied_at
		 FROM adjustments WHERE channel = ? AND success = 1
		 ORDER BY applied_at DESC, rowid DESC LIMIT 1`,
		channel,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// CountBySession returns how many adjustments a session made.
func (r *AdjustmentRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM adjustments WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

func scanAdjustment(row scanner) (*Adjustment, error) {
	a := &Adjustment{}
	var session sql.NullString
	if err := row.Scan(&a.ID, &session, &a.Channel, &a.Percent, &a.Success, &a.Error, &a.AppliedAt); err != nil {
		return nil, err
	}
	a.SessionID = session.String
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Recorder persists actuator invocations as adjustments of one session.
type Recorder struct {
	repo      *AdjustmentRepository
	sessionID string
	log       logger.Logger
}

// NewRecorder returns a control.Recorder writing to repo.
func NewRecorder(repo *AdjustmentRepository, sessionID string, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, sessionID: sessionID, log: log}
}

// RecordApply implements control.Recorder. Storage errors are only logged.
func (r *Recorder) RecordApply(ctx context.Context, ch control.Channel, percent int, err error, at time.Time) {
	a := &Adjustment{
		SessionID: r.sessionID,
		Channel:   ch.String(),
		Percent:   percent,
		Success:   err == nil,
		AppliedAt: at,
	}
	if err != nil {
		a.Error = err.Error()
	}
	if werr := r.repo.Create(a); werr != nil {
		r.log.Warn(ctx, "failed to record adjustment",
			logger.String("channel", a.Channel),
			logger.Error(werr),
		)
	}
}
