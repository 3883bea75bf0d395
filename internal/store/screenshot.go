package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Screenshot triggers.
const (
	TriggerKey  = "key"
	TriggerAPI  = "api"
	TriggerTray = "tray"
	TriggerCLI  = "cli"
)

// Screenshot is a saved capture.
type Screenshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Path      string    `json:"path"`
	Method    string    `json:"method,omitempty"`
	Trigger   string    `json:"trigger"`
	CreatedAt time.Time `json:"created_at"`
}

// ScreenshotRepository provides operations for screenshots.
type ScreenshotRepository struct {
	db *sql.DB
}

// Screenshots returns the screenshot repository for this store.
func (s *Store) Screenshots() *ScreenshotRepository {
	return &ScreenshotRepository{db: s.db}
}

// Create inserts a screenshot record.
func (r *ScreenshotRepository) Create(sc *Screenshot) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO screenshots (id, session_id, path, method, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sc.ID, nullString(sc.SessionID), sc.Path, sc.Method, sc.Trigger, sc.CreatedAt,
	)
	return err
}

// List returns screenshots newest first. limit <= 0 means no limit.
func (r *ScreenshotRepository) List(limit int) ([]*Screenshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, path, method, source, created_at
		 FROM screenshots ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []*Screenshot
	for rows.Next() {
		sc := &Screenshot{}
		var session sql.NullString
		if err := rows.Scan(&sc.ID, &session, &sc.Path, &sc.Method, &sc.Trigger, &sc.CreatedAt); err != nil {
			return nil, err
		}
		sc.SessionID = session.String
		shots = append(shots, sc)
	}
	return shots, rows.Err()
}

// DeleteByPath removes records for files that were cleaned up.
func (r *ScreenshotRepository) DeleteByPath(paths ...string) error {
	for _, p := range paths {
		if _, err := r.db.Exec(`DELETE FROM screenshots WHERE path = ?`, p); err != nil {
			return err
		}
	}
	return nil
}
