package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/example/watchful/internal/ports/secondary"
)

// ============================================================================
// Mock EvidenceRepository
// ============================================================================

// Ensure mockEvidenceRepository implements the interface
var _ secondary.EvidenceRepository = (*mockEvidenceRepository)(nil)

// mockEvidenceRepository implements secondary.EvidenceRepository in memory.
type mockEvidenceRepository struct {
	mu     sync.Mutex
	rows   map[int64]*secondary.EvidenceRecord
	nextID int64

	insertErr     error
	updateErr     error
	getPendingErr error
	countErr      error
}

func newMockEvidenceRepository() *mockEvidenceRepository {
	return &mockEvidenceRepository{
		rows: make(map[int64]*secondary.EvidenceRecord),
	}
}

func (m *mockEvidenceRepository) Insert(ctx context.Context, record *secondary.EvidenceRecord) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row := *record
	row.LocalID = m.nextID
	m.rows[row.LocalID] = &row
	return row.LocalID, nil
}

func (m *mockEvidenceRepository) Update(ctx context.Context, localID int64, update secondary.EvidenceUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[localID]
	if !ok {
		return fmt.Errorf("evidence %d not found", localID)
	}
	if update.UploadStatus != nil && *update.UploadStatus == secondary.UploadStatusPending && row.UploadStatus == secondary.UploadStatusUploaded {
		return errors.New("cannot move uploaded evidence back to pending")
	}
	if update.ServerID != nil {
		id := *update.ServerID
		row.ServerID = &id
	}
	if update.UploadStatus != nil {
		row.UploadStatus = *update.UploadStatus
	}
	if update.UploadedAt != nil {
		at := *update.UploadedAt
		row.UploadedAt = &at
	}
	if update.RemoteFileID != nil {
		row.RemoteFileID = *update.RemoteFileID
	}
	return nil
}

func (m *mockEvidenceRepository) GetAll(ctx context.Context) ([]*secondary.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.sorted(func(*secondary.EvidenceRecord) bool { return true })
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (m *mockEvidenceRepository) GetPending(ctx context.Context) ([]*secondary.EvidenceRecord, error) {
	if m.getPendingErr != nil {
		return nil, m.getPendingErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(isPending), nil
}

func (m *mockEvidenceRepository) GetByID(ctx context.Context, localID int64) (*secondary.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[localID]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *mockEvidenceRepository) Delete(ctx context.Context, localID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[localID]; !ok {
		return fmt.Errorf("evidence %d not found", localID)
	}
	delete(m.rows, localID)
	return nil
}

func (m *mockEvidenceRepository) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[int64]*secondary.EvidenceRecord)
	return nil
}

func (m *mockEvidenceRepository) CountPending(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sorted(isPending)), nil
}

// row returns a copy of a row for assertions.
func (m *mockEvidenceRepository) row(localID int64) secondary.EvidenceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[localID]
}

func (m *mockEvidenceRepository) sorted(keep func(*secondary.EvidenceRecord) bool) []*secondary.EvidenceRecord {
	var rows []*secondary.EvidenceRecord
	for _, row := range m.rows {
		if keep(row) {
			copied := *row
			rows = append(rows, &copied)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].LocalID < rows[j].LocalID
	})
	return rows
}

func isPending(row *secondary.EvidenceRecord) bool {
	return row.UploadStatus == secondary.UploadStatusPending
}

// ============================================================================
// Mock PreferenceStore
// ============================================================================

// Ensure mockPreferenceStore implements the interface
var _ secondary.PreferenceStore = (*mockPreferenceStore)(nil)

type mockPreferenceStore struct {
	mu     sync.Mutex
	values map[string]bool
	getErr error
	setErr error
}

func newMockPreferenceStore() *mockPreferenceStore {
	return &mockPreferenceStore{values: make(map[string]bool)}
}

func (m *mockPreferenceStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	if m.getErr != nil {
		return false, false, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found := m.values[key]
	return value, found, nil
}

func (m *mockPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockPreferenceStore) lookup(key string) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found := m.values[key]
	return value, found
}

// ============================================================================
// Mock RemoteSettingsReader
// ============================================================================

// Ensure mockRemoteSettings implements the interface
var _ secondary.RemoteSettingsReader = (*mockRemoteSettings)(nil)

type mockRemoteSettings struct {
	value bool
	err   error
	calls atomic.Int32

	// release, when set, blocks every fetch until it is closed or the
	// fetch context ends.
	release chan struct{}
}

func (m *mockRemoteSettings) FetchMotionDetectionSetting(ctx context.Context) (bool, error) {
	m.calls.Add(1)
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if m.err != nil {
		return false, m.err
	}
	return m.value, nil
}

// ============================================================================
// Mock SensorPipeline
// ============================================================================

// Ensure mockSensorPipeline implements the interface
var _ secondary.SensorPipeline = (*mockSensorPipeline)(nil)

type mockSensorPipeline struct {
	mu       sync.Mutex
	running  bool
	starts   int
	stops    int
	startErr error
	stopErr  error
}

func (m *mockSensorPipeline) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	if m.startErr != nil {
		return m.startErr
	}
	m.running = true
	return nil
}

func (m *mockSensorPipeline) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	if m.stopErr != nil {
		return m.stopErr
	}
	m.running = false
	return nil
}

func (m *mockSensorPipeline) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *mockSensorPipeline) counts() (starts, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts, m.stops
}

// ============================================================================
// Mock BlobStore
// ============================================================================

// Ensure mockBlobStore implements the interface
var _ secondary.BlobStore = (*mockBlobStore)(nil)

type mockBlobStore struct {
	mu       sync.Mutex
	uploads  []string
	failures map[string]error
	nextID   int

	// onUpload runs after an upload is recorded, before it returns.
	onUpload func(path string)
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{failures: make(map[string]error)}
}

func (m *mockBlobStore) Upload(ctx context.Context, localPath string) (string, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, localPath)
	err := m.failures[localPath]
	m.nextID++
	id := fmt.Sprintf("blob-%d", m.nextID)
	hook := m.onUpload
	m.mu.Unlock()

	if hook != nil {
		hook(localPath)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (m *mockBlobStore) uploaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// ============================================================================
// Mock EvidenceBackend
// ============================================================================

// Ensure mockEvidenceBackend implements the interface
var _ secondary.EvidenceBackend = (*mockEvidenceBackend)(nil)

type mockEvidenceBackend struct {
	mu        sync.Mutex
	nextID    int64
	created   []secondary.CreateRecordRequest
	marked    map[int64]string
	createErr error
	markErr   error
}

func newMockEvidenceBackend() *mockEvidenceBackend {
	return &mockEvidenceBackend{nextID: 100, marked: make(map[int64]string)}
}

func (m *mockEvidenceBackend) CreateRecord(ctx context.Context, req secondary.CreateRecordRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = append(m.created, req)
	m.nextID++
	return m.nextID, nil
}

func (m *mockEvidenceBackend) MarkUploaded(ctx context.Context, serverID int64, remoteFileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.marked[serverID] = remoteFileID
	return nil
}

// ============================================================================
// Mock ConnectivityMonitor
// ============================================================================

// Ensure mockConnectivity implements the interface
var _ secondary.ConnectivityMonitor = (*mockConnectivity)(nil)

type mockConnectivity struct {
	mu          sync.Mutex
	current     secondary.Connectivity
	subscribers map[chan secondary.Connectivity]struct{}
}

func newMockConnectivity(kind secondary.ConnectivityKind) *mockConnectivity {
	return &mockConnectivity{
		current:     secondary.Connectivity{Kind: kind},
		subscribers: make(map[chan secondary.Connectivity]struct{}),
	}
}

func (m *mockConnectivity) Current() secondary.Connectivity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *mockConnectivity) Subscribe() (<-chan secondary.Connectivity, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan secondary.Connectivity, 4)
	m.subscribers[ch] = struct{}{}
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, ch)
	}
}

// set changes the state and notifies subscribers.
func (m *mockConnectivity) set(kind secondary.ConnectivityKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = secondary.Connectivity{Kind: kind}
	for ch := range m.subscribers {
		ch <- m.current
	}
}

func (m *mockConnectivity) subscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}
