package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/watchful/internal/adapters/sqlite"
	"github.com/example/watchful/internal/ports/secondary"
)

func TestPreferenceRepository_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPreferenceRepository(db)

	value, found, err := repo.GetBool(context.Background(), secondary.PrefMotionDetectionEnabled)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if found || value {
		t.Errorf("got (%v, %v), want (false, false)", value, found)
	}
}

func TestPreferenceRepository_SetAndOverwrite(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPreferenceRepository(db)
	ctx := context.Background()

	if err := repo.SetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled, true); err != nil {
		t.Fatalf("SetBool failed: %v", err)
	}
	value, found, err := repo.GetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled)
	if err != nil || !found || !value {
		t.Fatalf("got (%v, %v, %v), want (true, true, nil)", value, found, err)
	}

	if err := repo.SetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled, false); err != nil {
		t.Fatalf("SetBool failed: %v", err)
	}
	value, found, _ = repo.GetBool(ctx, secondary.PrefRemoteMotionDetectionEnabled)
	if !found || value {
		t.Errorf("got (%v, %v), want (false, true)", value, found)
	}

	// Keys are independent.
	if _, found, _ := repo.GetBool(ctx, secondary.PrefMotionDetectionEnabled); found {
		t.Error("expected local toggle unset")
	}
}

func TestPreferenceRepository_CorruptValue(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewPreferenceRepository(db)

	_, err := db.Exec("INSERT INTO preferences (key, value, updated_at) VALUES (?, 'maybe', '2026-01-01T00:00:00Z')", secondary.PrefMotionDetectionEnabled)
	if err != nil {
		t.Fatalf("failed to seed preference: %v", err)
	}

	if _, _, err := repo.GetBool(context.Background(), secondary.PrefMotionDetectionEnabled); err == nil {
		t.Error("expected error for a non-bool value")
	}
}
