package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per run of the control loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			camera_id INTEGER NOT NULL,
			volume_backend TEXT NOT NULL,
			brightness_backend TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		// Every setter invocation, successful or not
		`CREATE TABLE IF NOT EXISTS adjustments (
			id TEXT PRIMARY KEY,
			session_id TEXT REFERENCES sessions(id) ON DELETE CASCADE,
			channel TEXT NOT NULL CHECK(channel IN ('volume', 'brightness')),
			percent INTEGER NOT NULL CHECK(percent BETWEEN 0 AND 100),
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			applied_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS screenshots (
			id TEXT PRIMARY KEY,
			session_id TEXT REFERENCES sessions(id) ON DELETE SET NULL,
			path TEXT NOT NULL,
			method TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_adjustments_session_id ON adjustments(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_adjustments_channel_applied ON adjustments(channel, applied_at)`,
		`CREATE INDEX IF NOT EXISTS idx_screenshots_created ON screenshots(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
