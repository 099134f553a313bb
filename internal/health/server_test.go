package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/nodehealth/internal/core/domain"
)

type fixedChecker struct {
	verdict domain.Verdict
}

func (c fixedChecker) Evaluate(ctx context.Context) domain.Verdict {
	return c.verdict
}

type chanRecorder struct {
	records chan domain.CheckRecord
	err     error
}

func (r *chanRecorder) Record(ctx context.Context, rec domain.CheckRecord) error {
	r.records <- rec
	return r.err
}

func get(t *testing.T, h http.Handler, path string, header http.Header) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestServer_StatusCodes(t *testing.T) {
	tests := []struct {
		name        string
		verdict     domain.Verdict
		wantStatus  int
		contentType string
	}{
		{"healthy text", domain.Healthy("-3"), http.StatusOK, "text/plain; charset=utf-8"},
		{"unhealthy text", domain.Unhealthy("-4"), http.StatusInternalServerError, "text/plain; charset=utf-8"},
		{
			"healthy json",
			domain.Verdict{Healthy: true, Diagnostic: `{"currentBlock": "0x64"}`, Structured: true},
			http.StatusOK,
			"application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(fixedChecker{tt.verdict}, ServerConfig{Mode: ModeSyncing})

			resp, body := get(t, s.Handler(), "/", nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("expected content type %q, got %q", tt.contentType, got)
			}
			if body != tt.verdict.Diagnostic {
				t.Errorf("expected body %q, got %q", tt.verdict.Diagnostic, body)
			}
		})
	}
}

func TestServer_AnyPathIsHealthCheck(t *testing.T) {
	s := NewServer(fixedChecker{domain.Healthy("0")}, ServerConfig{})

	for _, path := range []string{"/", "/health", "/some/other/path"} {
		resp, body := get(t, s.Handler(), path, nil)
		if resp.StatusCode != http.StatusOK || body != "0" {
			t.Errorf("%s: expected 200 with body 0, got %d %q", path, resp.StatusCode, body)
		}
	}
}

func TestServer_CORSHeaders(t *testing.T) {
	s := NewServer(fixedChecker{domain.Unhealthy("-10")}, ServerConfig{})

	for _, header := range []http.Header{nil, {"Origin": []string{"https://example.com"}}} {
		resp, _ := get(t, s.Handler(), "/", header)
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected allow-origin *, got %q", got)
		}
		if got := resp.Header.Get("Access-Control-Allow-Headers"); got != corsHeaders {
			t.Errorf("expected allow-headers %q, got %q", corsHeaders, got)
		}
	}
}

func TestServer_Preflight(t *testing.T) {
	s := NewServer(fixedChecker{domain.Healthy("0")}, ServerConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code >= 300 {
		t.Errorf("expected successful preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected allow-origin *, got %q", got)
	}
}

func TestServer_Metrics(t *testing.T) {
	s := NewServer(fixedChecker{domain.Healthy("0")}, ServerConfig{Mode: ModeSynced})
	get(t, s.Handler(), "/", nil)

	resp, body := get(t, s.Handler(), "/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "nodehealth_checks_total") {
		t.Error("expected checks counter in metrics output")
	}
}

func TestStaticServer(t *testing.T) {
	s := NewStaticServer(http.StatusTeapot, "static", ServerConfig{})

	resp, body := get(t, s.Handler(), "/anything", nil)
	if resp.StatusCode != http.StatusTeapot || body != "static" {
		t.Errorf("expected 418 static, got %d %q", resp.StatusCode, body)
	}
}

func TestServer_RecordsVerdicts(t *testing.T) {
	recorder := &chanRecorder{records: make(chan domain.CheckRecord, 1), err: errors.New("db down")}
	s := NewServer(fixedChecker{domain.Unhealthy("-7")}, ServerConfig{Mode: ModeSynced, Node: "geth-1"})
	s.SetRecorder(recorder)

	resp, _ := get(t, s.Handler(), "/", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected a failing recorder not to change the verdict, got %d", resp.StatusCode)
	}

	select {
	case rec := <-recorder.records:
		if rec.ID == "" {
			t.Error("expected record id")
		}
		if rec.Node != "geth-1" || rec.Mode != string(ModeSynced) {
			t.Errorf("unexpected labels %q/%q", rec.Node, rec.Mode)
		}
		if rec.Healthy || rec.Diagnostic != "-7" {
			t.Errorf("unexpected verdict %+v", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected verdict to be recorded")
	}
}

// The full freeze cycle as a load balancer sees it.
func TestServer_FreezeCycle(t *testing.T) {
	clock := newFakeClock()
	node := &stubNode{}
	e := newTestEvaluator(node, &stubReference{}, clock, 0)
	srv := httptest.NewServer(NewServer(e, ServerConfig{Mode: ModeSyncing}).Handler())
	defer srv.Close()

	poll := func(block uint64, after time.Duration) int {
		clock.Advance(after)
		node.set(syncing(block, nil), nil)
		resp, err := http.Get(srv.URL)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	steps := []struct {
		block uint64
		after time.Duration
		want  int
	}{
		{100, 0, http.StatusOK},
		{100, 149 * time.Second, http.StatusOK},
		{100, 2 * time.Second, http.StatusInternalServerError},
		{101, time.Second, http.StatusOK},
	}
	for i, s := range steps {
		if got := poll(s.block, s.after); got != s.want {
			t.Fatalf("step %d: expected %d, got %d", i, s.want, got)
		}
	}
}

func TestServer_ConcurrentRequests(t *testing.T) {
	node := &stubNode{status: syncing(100, nil)}
	e := newTestEvaluator(node, &stubReference{}, newFakeClock(), 0)
	h := NewServer(e, ServerConfig{}).Handler()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
		}()
	}
	wg.Wait()
}

func TestServer_StartFailsOnOccupiedPort(t *testing.T) {
	held, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to hold a port: %v", err)
	}
	defer held.Close()
	port := held.Addr().(*net.TCPAddr).Port

	s := NewServer(fixedChecker{domain.Healthy("0")}, ServerConfig{Port: port})
	if err := s.Start(make(chan error, 1)); err == nil {
		_ = s.Stop(context.Background())
		t.Fatalf("expected bind error on occupied port %d", port)
	}
}

func TestServer_StartAndStop(t *testing.T) {
	s := NewServer(fixedChecker{domain.Healthy("0")}, ServerConfig{Port: 0})
	errs := make(chan error, 1)
	if err := s.Start(errs); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	port := s.Addr().(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", port))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	select {
	case err := <-errs:
		t.Errorf("expected a clean shutdown not to report an error, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}
