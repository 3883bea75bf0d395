package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the control loop.
type Session struct {
	ID                string
	CameraID          int
	VolumeBackend     string
	BrightnessBackend string
	Frames            int64
	StartedAt         time.Time
	FinishedAt        *time.Time
}

// SessionRepository provides operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session, assigning an ID and start time when unset.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, camera_id, volume_backend, brightness_backend, frames, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CameraID, sess.VolumeBackend, sess.BrightnessBackend, sess.Frames, sess.StartedAt,
	)
	return err
}

// Finish records the frame count and end time of a session.
func (r *SessionRepository) Finish(id string, frames int64, at time.Time) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, finished_at = ? WHERE id = ?`,
		frames, at, id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT id, camera_id, volume_backend, brightness_backend, frames, started_at, finished_at
		 FROM sessions WHERE id = ?`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns the most recent sessions first. limit <= 0 means no limit.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, camera_id, volume_backend, brightness_backend, frames, started_at, finished_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var finished sql.NullTime
	if err := row.Scan(&sess.ID, &sess.CameraID, &sess.VolumeBackend, &sess.BrightnessBackend,
		&sess.Frames, &sess.StartedAt, &finished); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		sess.FinishedAt = &t
	}
	return sess, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
