package db

import "database/sql"

// SchemaSQL is the complete schema for fresh installs. It reflects the
// state after all migrations have run.
//
// This is the single source of truth for the schema: tests load it through
// GetSchemaSQL() instead of declaring their own tables. When adding a
// column, add a migration in migrations.go and update SchemaSQL to match.
const SchemaSQL = `
-- Locally captured evidence awaiting (or done with) remote upload
CREATE TABLE IF NOT EXISTS evidence (
	local_id INTEGER PRIMARY KEY AUTOINCREMENT,
	server_id INTEGER,
	evidence_type TEXT NOT NULL CHECK(evidence_type IN ('video', 'audio')),
	local_path TEXT NOT NULL,
	file_size_bytes INTEGER NOT NULL DEFAULT 0,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	upload_status TEXT NOT NULL CHECK(upload_status IN ('pending', 'uploaded')) DEFAULT 'pending',
	created_at TEXT NOT NULL,
	uploaded_at TEXT,
	remote_file_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_evidence_upload_status ON evidence(upload_status);

-- Scalar device preferences (motion toggle, cached remote setting)
CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	// Older installs created evidence before schema_version existed.
	var evidenceCount int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='evidence'").Scan(&evidenceCount)
	if err != nil {
		return err
	}
	if evidenceCount > 0 {
		return RunMigrations(database)
	}

	// Completely fresh install: create the modern schema and mark every
	// migration as applied.
	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema for tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
