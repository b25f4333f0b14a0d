// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/watchful/internal/adapters/sqlite"
	"github.com/example/watchful/internal/db"
	"github.com/example/watchful/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedEvidence inserts a pending row and returns its local ID.
func seedEvidence(t *testing.T, repo *sqlite.EvidenceRepository, path string, createdAt time.Time) int64 {
	t.Helper()
	id, err := repo.Insert(context.Background(), &secondary.EvidenceRecord{
		EvidenceType:    secondary.EvidenceTypeVideo,
		LocalPath:       path,
		FileSizeBytes:   1024,
		DurationSeconds: 10,
		UploadStatus:    secondary.UploadStatusPending,
		CreatedAt:       createdAt,
	})
	if err != nil {
		t.Fatalf("failed to seed evidence: %v", err)
	}
	return id
}
