package givehub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type capturedRequest struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

func captureServer(t *testing.T, captured *capturedRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.Query()

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &captured.body)
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": "result-1"})
	}))
}

func TestResourceEndpoints(t *testing.T) {
	t.Parallel()

	filters := Params{"status": "active", "page": "1"}
	body := map[string]any{"title": "Clean Water"}

	tests := []struct {
		name       string
		call       func(ctx context.Context, c *Client) (Response, error)
		wantMethod string
		wantPath   string
		wantQuery  bool
		wantBody   map[string]any
	}{
		{
			name:       "campaigns create",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Campaigns.Create(ctx, body) },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/campaigns",
			wantBody:   body,
		},
		{
			name:       "campaigns get",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Campaigns.Get(ctx, "c1") },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/campaigns/c1",
		},
		{
			name:       "campaigns list",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Campaigns.List(ctx, filters) },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/campaigns",
			wantQuery:  true,
		},
		{
			name:       "campaigns update",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Campaigns.Update(ctx, "c1", body) },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/campaigns/c1",
			wantBody:   body,
		},
		{
			name:       "donations create",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Donations.Create(ctx, body) },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/donations",
			wantBody:   body,
		},
		{
			name:       "donations list",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Donations.List(ctx, filters) },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/donations",
			wantQuery:  true,
		},
		{
			name:       "donations create recurring",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Donations.CreateRecurring(ctx, body) },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/donations/recurring",
			wantBody:   body,
		},
		{
			name:       "donations cancel recurring",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Donations.CancelRecurring(ctx, "sub-9") },
			wantMethod: http.MethodDelete,
			wantPath:   "/v1/donations/recurring/sub-9",
		},
		{
			name:       "impact update metrics",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Impact.UpdateMetrics(ctx, "m1", body) },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/impact/metrics/m1",
			wantBody:   body,
		},
		{
			name:       "impact get metrics",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Impact.GetMetrics(ctx, "c1", filters) },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/impact/metrics/c1",
			wantQuery:  true,
		},
		{
			name:       "updates create",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Updates.Create(ctx, body) },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/updates",
			wantBody:   body,
		},
		{
			name:       "updates list",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Updates.List(ctx, filters) },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/updates",
			wantQuery:  true,
		},
		{
			name:       "notifications list",
			call:       func(ctx context.Context, c *Client) (Response, error) { return c.Notifications.List(ctx, filters) },
			wantMethod: http.MethodGet,
			wantPath:   "/v1/notifications",
			wantQuery:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var captured capturedRequest
			server := captureServer(t, &captured)
			defer server.Close()

			client := newTestClient(t, server.URL, Config{})

			resp, err := tt.call(context.Background(), client)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if resp.ID() != "result-1" {
				t.Errorf("expected response to be returned, got %v", resp)
			}

			if captured.method != tt.wantMethod {
				t.Errorf("expected method %s, got %s", tt.wantMethod, captured.method)
			}

			if captured.path != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, captured.path)
			}

			if tt.wantQuery {
				if captured.query.Get("status") != "active" || captured.query.Get("page") != "1" {
					t.Errorf("expected filters as query params, got %v", captured.query)
				}
			} else if len(captured.query) != 0 {
				t.Errorf("expected no query params, got %v", captured.query)
			}

			for k, v := range tt.wantBody {
				if captured.body[k] != v {
					t.Errorf("expected body[%s]=%v, got %v", k, v, captured.body[k])
				}
			}
		})
	}
}

func TestImpactCreateMetrics_MergesCampaignID(t *testing.T) {
	t.Parallel()

	var captured capturedRequest
	server := captureServer(t, &captured)
	defer server.Close()

	client := newTestClient(t, server.URL, Config{})

	_, err := client.Impact.CreateMetrics(context.Background(), "c1", map[string]any{
		"metrics": []any{map[string]any{"name": "People Helped", "value": 500}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.path != "/v1/impact/metrics" {
		t.Errorf("expected path /v1/impact/metrics, got %s", captured.path)
	}

	if captured.body["campaignId"] != "c1" {
		t.Errorf("expected campaignId=c1, got %v", captured.body["campaignId"])
	}

	if _, ok := captured.body["metrics"]; !ok {
		t.Errorf("expected metrics in body, got %v", captured.body)
	}
}

func TestGet_EscapesPathParams(t *testing.T) {
	t.Parallel()

	var rawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{})

	if _, err := client.Campaigns.Get(context.Background(), "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rawPath != "/v1/campaigns/a%2Fb" {
		t.Errorf("expected escaped id, got %s", rawPath)
	}
}

func TestUploadMedia(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tests := []struct {
		name     string
		call     func(ctx context.Context, c *Client) (Response, error)
		wantPath string
	}{
		{
			name:     "campaign media",
			call:     func(ctx context.Context, c *Client) (Response, error) { return c.Campaigns.UploadMedia(ctx, "c1", path) },
			wantPath: "/v1/campaigns/c1/media",
		},
		{
			name:     "update media",
			call:     func(ctx context.Context, c *Client) (Response, error) { return c.Updates.UploadMedia(ctx, "u1", path) },
			wantPath: "/v1/updates/u1/media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotPath, contentType, fileName, content, apiKey string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				contentType = r.Header.Get("Content-Type")
				apiKey = r.Header.Get("X-API-Key")

				file, header, err := r.FormFile("media")
				if err == nil {
					fileName = header.Filename
					raw, _ := io.ReadAll(file)
					content = string(raw)
					_ = file.Close()
				}

				writeJSON(w, http.StatusOK, map[string]any{"id": "m1"})
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, Config{APIKey: "k"})

			if _, err := tt.call(context.Background(), client); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if gotPath != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, gotPath)
			}

			if !strings.HasPrefix(contentType, "multipart/form-data") {
				t.Errorf("expected multipart content type, got %s", contentType)
			}

			if fileName != "photo.jpg" || content != "jpeg-bytes" {
				t.Errorf("expected media field with file contents, got name=%q content=%q", fileName, content)
			}

			if apiKey != "k" {
				t.Errorf("expected X-API-Key on upload, got %q", apiKey)
			}
		})
	}
}

func TestUploadMedia_MissingFile(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://example.com", Config{})

	_, err := client.Campaigns.UploadMedia(context.Background(), "c1", filepath.Join(t.TempDir(), "missing.jpg"))

	if err == nil {
		t.Fatal("expected error for missing file")
	}

	if !strings.Contains(err.Error(), "failed to read upload") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUploadMedia_RetryCountDoesNotResendConsumedBody(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	var (
		mu       sync.Mutex
		contents []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := ""
		if file, _, err := r.FormFile("media"); err == nil {
			raw, _ := io.ReadAll(file)
			content = string(raw)
			_ = file.Close()
		}

		mu.Lock()
		contents = append(contents, content)
		mu.Unlock()

		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{},
		WithRetryCount(2),
		WithRetryWaitTime(10*time.Millisecond),
		WithRetryMaxWaitTime(20*time.Millisecond),
	)

	_, err := client.Campaigns.UploadMedia(context.Background(), "c1", path)

	if StatusCode(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(contents) != 1 {
		t.Fatalf("expected a single upload attempt, got %d", len(contents))
	}

	if contents[0] != "jpeg-bytes" {
		t.Errorf("expected full file contents, got %q", contents[0])
	}
}

func TestUploadMedia_RefreshResendsFullFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	var (
		mu       sync.Mutex
		contents []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/auth/refresh" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "accessToken": "fresh"})
			return
		}

		content := ""
		if file, _, err := r.FormFile("media"); err == nil {
			raw, _ := io.ReadAll(file)
			content = string(raw)
			_ = file.Close()
		}

		mu.Lock()
		contents = append(contents, content)
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "expired"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": "m1"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Config{AccessToken: "stale", RefreshToken: "r"})

	resp, err := client.Updates.UploadMedia(context.Background(), "u1", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ID() != "m1" {
		t.Errorf("expected id=m1, got %v", resp)
	}

	mu.Lock()
	defer mu.Unlock()

	if len(contents) != 2 || contents[0] != "jpeg-bytes" || contents[1] != "jpeg-bytes" {
		t.Errorf("expected both attempts to carry the full file, got %q", contents)
	}
}
