// Package backend is the HTTP client for the safety backend. It reads the
// remote motion-detection setting of the monitored actor and keeps the
// backend's evidence records in step with local uploads.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/watchful/internal/ports/secondary"
)

// maxResponseSize bounds response body reads. Every response this client
// reads is a small JSON object.
const maxResponseSize int64 = 1 << 20

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Config holds configuration for creating a backend Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://safety.example.com/api".
	BaseURL string

	// Token is sent as a bearer token on every request.
	Token string

	// Timeout bounds each request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	// Logger defaults to discarding output.
	Logger *slog.Logger
}

// Client implements secondary.RemoteSettingsReader and
// secondary.EvidenceBackend over the backend REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. BaseURL must be http or https.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "https://") && !strings.HasPrefix(baseURL, "http://") {
		return nil, fmt.Errorf("backend: base URL must be http or https (got %q)", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    baseURL,
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type safetySettingsResponse struct {
	MotionDetection *bool `json:"motion_detection"`
}

// FetchMotionDetectionSetting reads the monitored actor's remote toggle.
// Transport errors, non-2xx statuses and malformed bodies all match
// secondary.ErrRemoteUnavailable.
func (c *Client) FetchMotionDetectionSetting(ctx context.Context) (bool, error) {
	var settings safetySettingsResponse
	if err := c.do(ctx, http.MethodGet, "/dependent/safety-settings", nil, &settings); err != nil {
		return false, fmt.Errorf("%w: %w", secondary.ErrRemoteUnavailable, err)
	}
	if settings.MotionDetection == nil {
		return false, fmt.Errorf("%w: response has no motion_detection field", secondary.ErrRemoteUnavailable)
	}
	return *settings.MotionDetection, nil
}

type createRecordBody struct {
	EvidenceType string `json:"evidence_type"`
	LocalPath    string `json:"local_path"`
	FileSize     int64  `json:"file_size"`
	Duration     int64  `json:"duration"`
}

type evidenceResponse struct {
	ID int64 `json:"id"`
}

// CreateRecord registers captured evidence and returns the server ID.
func (c *Client) CreateRecord(ctx context.Context, req secondary.CreateRecordRequest) (int64, error) {
	body := createRecordBody{
		EvidenceType: req.EvidenceType,
		LocalPath:    req.LocalPath,
		FileSize:     req.FileSizeBytes,
		Duration:     req.DurationSeconds,
	}

	var created evidenceResponse
	if err := c.do(ctx, http.MethodPost, "/evidence/create", body, &created); err != nil {
		return 0, fmt.Errorf("%w: create record: %w", secondary.ErrBackendSync, err)
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("%w: create record: response has no id", secondary.ErrBackendSync)
	}
	return created.ID, nil
}

type markUploadedBody struct {
	FileURL      string `json:"file_url"`
	UploadStatus string `json:"upload_status"`
}

// MarkUploaded tells the backend where the evidence file now lives.
func (c *Client) MarkUploaded(ctx context.Context, serverID int64, remoteFileID string) error {
	body := markUploadedBody{
		FileURL:      remoteFileID,
		UploadStatus: secondary.UploadStatusUploaded,
	}

	path := fmt.Sprintf("/evidence/%d/uploaded", serverID)
	if err := c.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("%w: mark uploaded %d: %w", secondary.ErrBackendSync, serverID, err)
	}
	return nil
}

// do executes an authenticated JSON request. On 2xx the body is decoded
// into result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, requestBody, result any) error {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	url := c.baseURL + path
	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Debug("backend request failed", "method", method, "path", path, "status", response.StatusCode)
		return &StatusError{StatusCode: response.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Body)
}

var (
	_ secondary.RemoteSettingsReader = (*Client)(nil)
	_ secondary.EvidenceBackend      = (*Client)(nil)
)
