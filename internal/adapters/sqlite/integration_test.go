package sqlite_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/example/watchful/internal/adapters/backend"
	"github.com/example/watchful/internal/adapters/blobstore"
	"github.com/example/watchful/internal/adapters/connectivity"
	"github.com/example/watchful/internal/adapters/sensor"
	"github.com/example/watchful/internal/adapters/sqlite"
	"github.com/example/watchful/internal/app"
	"github.com/example/watchful/internal/core/upload"
	"github.com/example/watchful/internal/db"
	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/ports/secondary"
)

// Integration tests run the application services against the real sqlite
// repositories, the directory blob store and the HTTP backend client.

// fakeBackend records the evidence API calls it receives.
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	created  []string
	marked   map[string]string
	motion   bool
	failRead bool
}

func (f *fakeBackend) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/dependent/safety-settings":
			if f.failRead {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]bool{"motion_detection": f.motion})
		case r.Method == http.MethodPost && r.URL.Path == "/api/evidence/create":
			var body struct {
				LocalPath string `json:"local_path"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode create body: %v", err)
			}
			f.nextID++
			f.created = append(f.created, body.LocalPath)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]int64{"id": f.nextID})
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/uploaded"):
			var body struct {
				FileURL string `json:"file_url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode mark body: %v", err)
			}
			f.marked[r.URL.Path] = body.FileURL
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}
}

func newBackendClient(t *testing.T, fake *fakeBackend) *backend.Client {
	t.Helper()
	if fake.marked == nil {
		fake.marked = make(map[string]string)
	}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := backend.NewClient(backend.Config{BaseURL: server.URL + "/api"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

// setupIntegrationDB opens a file database through db.Open so migrations
// and pragmas run as in production.
func setupIntegrationDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "watchful.db")
}

func TestIntegration_CaptureToUpload(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(setupIntegrationDB(t))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := sqlite.NewEvidenceRepository(database)
	blobs, err := blobstore.NewDirStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	fake := &fakeBackend{}
	client := newBackendClient(t, fake)

	evidence := app.NewEvidenceService(repo, nil)
	worker := app.NewRetryWorker(repo, blobs, client, connectivity.NewStatic(secondary.ConnectivityWifi), app.RetryWorkerOptions{})

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"first.mp4", "second.m4a", "vanished.mp4"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("evidence "+name), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}

	types := []string{"video", "audio", "video"}
	for i, path := range paths {
		if _, err := evidence.RecordCapture(ctx, primary.RecordCaptureRequest{EvidenceType: types[i], LocalPath: path}); err != nil {
			t.Fatalf("RecordCapture %s: %v", path, err)
		}
	}
	if err := os.Remove(paths[2]); err != nil {
		t.Fatalf("remove: %v", err)
	}

	report := worker.TriggerRetry(ctx)

	if report.Attempted != 3 || report.Uploaded != 2 || report.GaveUp != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	pending, err := evidence.CountPending(ctx)
	if err != nil || pending != 0 {
		t.Errorf("CountPending = %d, %v; want 0", pending, err)
	}

	// Backend records were created oldest first, and only for files that existed.
	if len(fake.created) != 2 || fake.created[0] != paths[0] || fake.created[1] != paths[1] {
		t.Errorf("created = %v", fake.created)
	}
	if len(fake.marked) != 2 {
		t.Errorf("marked = %v", fake.marked)
	}

	items, err := evidence.ListEvidence(ctx)
	if err != nil {
		t.Fatalf("ListEvidence: %v", err)
	}
	for _, item := range items {
		if item.UploadStatus != primary.EvidenceStatusUploaded || item.UploadedAt == nil {
			t.Errorf("item %d not closed: %+v", item.LocalID, item)
		}
		if item.LocalPath == paths[2] {
			if !item.GaveUp() {
				t.Errorf("expected vanished file to be a give-up row: %+v", item)
			}
			continue
		}
		if item.ServerID == nil {
			t.Errorf("item %d has no server id", item.LocalID)
		}
		if _, err := os.Stat(blobs.Path(item.RemoteFileID)); err != nil {
			t.Errorf("blob for item %d missing: %v", item.LocalID, err)
		}
		if _, err := os.Stat(item.LocalPath); !os.IsNotExist(err) {
			t.Errorf("local file of item %d should be deleted after upload", item.LocalID)
		}
	}

	// A second drain has nothing to do.
	if again := worker.TriggerRetry(ctx); again.Attempted != 0 {
		t.Errorf("second drain attempted %d items", again.Attempted)
	}
}

func TestIntegration_OfflineUploadsWithoutBackend(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := sqlite.NewEvidenceRepository(database)
	blobs, err := blobstore.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("clip"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	evidence := app.NewEvidenceService(repo, nil)
	item, err := evidence.RecordCapture(ctx, primary.RecordCaptureRequest{EvidenceType: "video", LocalPath: path})
	if err != nil {
		t.Fatalf("RecordCapture: %v", err)
	}

	worker := app.NewRetryWorker(repo, blobs, backend.Offline{}, connectivity.NewStatic(secondary.ConnectivityWifi), app.RetryWorkerOptions{})
	report := worker.TriggerRetry(ctx)

	if report.Uploaded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	got, err := evidence.GetEvidence(ctx, item.LocalID)
	if err != nil {
		t.Fatalf("GetEvidence: %v", err)
	}
	if got.ServerID != nil {
		t.Errorf("expected no server id offline, got %d", *got.ServerID)
	}
	if got.RemoteFileID == "" || got.UploadStatus != primary.EvidenceStatusUploaded {
		t.Errorf("expected uploaded with a remote id, got %+v", got)
	}
}

func TestIntegration_CellularWaitsForWifi(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	repo := sqlite.NewEvidenceRepository(database)
	blobs, err := blobstore.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("clip"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := app.NewEvidenceService(repo, nil).RecordCapture(ctx, primary.RecordCaptureRequest{EvidenceType: "video", LocalPath: path}); err != nil {
		t.Fatalf("RecordCapture: %v", err)
	}

	network := connectivity.NewStatic(secondary.ConnectivityCellular)
	worker := app.NewRetryWorker(repo, blobs, backend.Offline{}, network, app.RetryWorkerOptions{Allowed: upload.WifiOnly})

	if report := worker.TriggerRetry(ctx); !report.Skipped {
		t.Fatalf("expected skip on cellular, got %+v", report)
	}

	network.Set(secondary.ConnectivityWifi)
	if report := worker.TriggerRetry(ctx); report.Uploaded != 1 {
		t.Fatalf("expected upload on wifi, got %+v", report)
	}
}

func TestIntegration_GateCachesRemoteSetting(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	prefs := sqlite.NewPreferenceRepository(database)
	fake := &fakeBackend{motion: true}
	client := newBackendClient(t, fake)
	pipeline := sensor.NewExecPipeline(sensor.Config{})
	gate := app.NewGateService(prefs, client, pipeline, nil)
	child := app.ResolveActor([]string{"child"})

	gate.Evaluate(ctx, child)
	if !pipeline.IsRunning() {
		t.Fatal("expected pipeline running after remote enable")
	}

	// Backend goes away: the cached value keeps the pipeline running.
	fake.mu.Lock()
	fake.failRead = true
	fake.mu.Unlock()
	gate.Evaluate(ctx, child)
	if !pipeline.IsRunning() {
		t.Fatal("expected pipeline still running on cached value")
	}

	// Backend returns with the setting off.
	fake.mu.Lock()
	fake.failRead = false
	fake.motion = false
	fake.mu.Unlock()
	gate.RefreshRemoteSetting(ctx, child)
	if pipeline.IsRunning() {
		t.Fatal("expected pipeline stopped after remote disable")
	}

	status, err := gate.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.CachedRemote {
		t.Error("expected cached remote value false")
	}
}

func TestIntegration_LocalToggleSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := setupIntegrationDB(t)

	first, err := db.Open(path)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	pipeline := sensor.NewExecPipeline(sensor.Config{})
	guardian := app.ResolveActor([]string{"guardian"})
	gate := app.NewGateService(sqlite.NewPreferenceRepository(first), backend.Offline{}, pipeline, nil)
	if err := gate.SetLocalToggle(ctx, true, guardian); err != nil {
		t.Fatalf("SetLocalToggle: %v", err)
	}
	first.Close()

	second, err := db.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { second.Close() })

	restarted := sensor.NewExecPipeline(sensor.Config{})
	gate = app.NewGateService(sqlite.NewPreferenceRepository(second), backend.Offline{}, restarted, nil)
	gate.Evaluate(ctx, guardian)

	if !restarted.IsRunning() {
		t.Error("expected the persisted toggle to start the pipeline after restart")
	}
}
