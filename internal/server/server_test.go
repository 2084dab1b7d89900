package server

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pinboard/pkg/board"
	"github.com/matzehuels/pinboard/pkg/buildinfo"
	perrors "github.com/matzehuels/pinboard/pkg/errors"
	"github.com/matzehuels/pinboard/pkg/observability"
)

const scenario = `{
  "config": {"width": 300},
  "items": [
    {"id": "a", "height": 100},
    {"id": "b", "height": 50},
    {"id": "c", "height": 200}
  ]
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Defaults.Columns == 0 {
		cfg.Defaults = board.DefaultConfig()
	}
	cfg.Logger = log.New(io.Discard)
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/v1/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := decode[buildinfo.Info](t, resp); got.Version != buildinfo.Version {
		t.Errorf("version = %+v", got)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := post(t, ts, "/v1/layout", scenario)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	l := decode[board.Layout](t, resp)
	if l.Width != 300 || l.Height != 324 || len(l.Items) != 3 {
		t.Errorf("layout = width %v height %v items %d; want 300, 324, 3", l.Width, l.Height, len(l.Items))
	}
	if f := l.Items[2].Frame; f.X != 6 || f.Y != 118 || f.Width != 138 || f.Height != 200 {
		t.Errorf("item c frame = %+v", f)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, Config{})
	id := "5b7d3f3e-2f55-4a53-9d2c-0d5c8c2f8a61"

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}
}

func TestVisible(t *testing.T) {
	ts := newTestServer(t, Config{})
	body := strings.TrimSuffix(scenario, "}") + `, "viewport": {"x": 0, "y": 200, "width": 300, "height": 80}}`

	resp := post(t, ts, "/v1/visible", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	l := decode[board.Layout](t, resp)
	if len(l.Items) != 1 || l.Items[0].ID != "c" {
		t.Errorf("visible items = %+v, want only c", l.Items)
	}
	if l.ItemCount != 3 {
		t.Errorf("item count = %d, want 3", l.ItemCount)
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp := post(t, ts, "/v1/render", scenario)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("body is not svg: %.40s", data)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   perrors.Code
	}{
		{"malformed", "/v1/layout", `{`, 400, perrors.ErrCodeInvalidFormat},
		{"unknown field", "/v1/layout", `{"pins": []}`, 400, perrors.ErrCodeInvalidFormat},
		{"bad columns", "/v1/layout", `{"config": {"columns": 0}, "items": []}`, 400, perrors.ErrCodeInvalidConfig},
		{"duplicate id", "/v1/layout", `{"items": [{"id": "a"}, {"id": "a"}]}`, 400, perrors.ErrCodeInvalidInput},
		{"missing viewport", "/v1/visible", scenario, 400, perrors.ErrCodeInvalidViewport},
		{"negative viewport", "/v1/visible", `{"items": [], "viewport": {"width": -1, "height": 10}}`, 400, perrors.ErrCodeInvalidViewport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[errorBody](t, resp); got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", got.Error.Code, tt.code, got.Error.Message)
			}
		})
	}
}

func TestContentTypeRequired(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Post(ts.URL+"/v1/layout", "text/plain", strings.NewReader(scenario))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestImageHeights(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "wide.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 200, 100))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ts := newTestServer(t, Config{ImageDir: dir})
	resp := post(t, ts, "/v1/layout", `{"config": {"width": 320}, "items": [{"id": "p", "image": "wide.png"}, {"id": "q", "image": "gone.png"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	l := decode[board.Layout](t, resp)
	// inner width 320/2 - 12 = 148 gives 74 for a 2:1 image; the missing
	// image falls back to 180.
	if h := l.Items[0].Frame.Height; h != 74 {
		t.Errorf("resolved height = %v, want 74", h)
	}
	if h := l.Items[1].Frame.Height; h != 180 {
		t.Errorf("fallback height = %v, want 180", h)
	}
}

type httpRecorder struct {
	observability.NoopHTTPHooks
	requests, responses chan int
}

func (h *httpRecorder) OnRequest(context.Context, string, string) { h.requests <- 1 }
func (h *httpRecorder) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.responses <- status
}

func TestHTTPHooks(t *testing.T) {
	rec := &httpRecorder{requests: make(chan int, 1), responses: make(chan int, 1)}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/v1/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	<-rec.requests
	if status := <-rec.responses; status != http.StatusOK {
		t.Errorf("hook status = %d, want 200", status)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0", Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
