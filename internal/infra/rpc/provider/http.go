package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/nodehealth/internal/metrics"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 4 << 20

// HTTPProvider reaches a single HTTP endpoint, either as a JSON-RPC server or a REST API.
type HTTPProvider struct {
	name       string
	endpoint   string
	httpClient *http.Client

	mu           sync.RWMutex
	health       healthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// NewHTTPProvider creates a new HTTP-based provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: healthStatus{
			Available: true,
		},
	}
}

// Call makes a single JSON-RPC 2.0 call and returns the raw result.
func (p *HTTPProvider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, latency, err := p.do(req, method)
	if err != nil {
		return nil, err
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		p.recordFailure(method)
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if rpcResp.Error != nil {
		p.recordFailure(method)
		return nil, rpcResp.Error
	}

	p.recordSuccess(method, latency)
	return rpcResp.Result, nil
}

// Get issues a GET against the endpoint with the given query and returns the raw body.
// The op label is used for metrics only.
func (p *HTTPProvider) Get(ctx context.Context, op string, query url.Values) (json.RawMessage, error) {
	u := p.endpoint
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, latency, err := p.do(req, op)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		p.recordFailure(op)
		return nil, fmt.Errorf("parse response: invalid json: %s", truncate(body))
	}

	p.recordSuccess(op, latency)
	return body, nil
}

// do sends req and returns the body of a 2xx response. Transport failures are recorded
// here; callers record the outcome of decoding the body.
func (p *HTTPProvider) do(req *http.Request, op string) ([]byte, time.Duration, error) {
	start := time.Now()
	metrics.RPCCallsTotal.WithLabelValues(p.name, op).Inc()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.recordFailure(op)
		return nil, 0, fmt.Errorf("%s call: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		p.recordFailure(op)
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.recordFailure(op)
		return nil, 0, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(body))
	}

	return body, time.Since(start), nil
}

// Endpoint returns the URL the provider talks to.
func (p *HTTPProvider) Endpoint() string {
	return p.endpoint
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(op string, latency time.Duration) {
	metrics.RPCLatency.WithLabelValues(p.name, op).Observe(latency.Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}
	p.publishHealth()
}

func (p *HTTPProvider) recordFailure(op string) {
	metrics.RPCErrorsTotal.WithLabelValues(p.name, op).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
	p.publishHealth()
}

// publishHealth exports the health status as gauges. Callers hold p.mu.
func (p *HTTPProvider) publishHealth() {
	available := 0.0
	if p.health.Available {
		available = 1
	}
	metrics.ProviderAvailable.WithLabelValues(p.name).Set(available)
	metrics.ProviderErrorRate.WithLabelValues(p.name).Set(p.health.ErrorRate)
	metrics.ProviderAverageLatency.WithLabelValues(p.name).Set(p.health.Latency.Seconds())
	if !p.health.LastSuccessAt.IsZero() {
		metrics.ProviderLastSuccess.WithLabelValues(p.name).Set(float64(p.health.LastSuccessAt.Unix()))
	}
}

func truncate(b []byte) string {
	const max = 256
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
