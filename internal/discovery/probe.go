package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	// ProbeHost is where candidate ports are probed. Candidates only ever
	// come from loopback bindings.
	ProbeHost = "127.0.0.1"

	// DefaultProbeEndpoint is the leaderboard index; it exists in every
	// season, unlike a specific leaderboard id.
	DefaultProbeEndpoint = "leaderboard"

	DefaultProbeTimeout = 5 * time.Second

	maxProbeBody = 4 << 20
)

var (
	ErrInvalidPayload = errors.New("response is not JSON")
	ErrEmptyPayload   = errors.New("response payload is empty")
	ErrFailurePayload = errors.New("response carries a failure marker")
)

// ProbeOutcome is the result of probing one candidate port. A nil Err means
// the port is working.
type ProbeOutcome struct {
	Port int
	Err  error
}

// Working reports whether the port answered like the API.
func (o ProbeOutcome) Working() bool {
	return o.Err == nil
}

// ProbeFunc validates one candidate port. It must return promptly once ctx
// is cancelled.
type ProbeFunc func(ctx context.Context, port int) error

// FindWorkingPort probes every candidate concurrently and returns the first
// port whose probe succeeds. As soon as there is a winner the remaining
// probes are cancelled; their results are discarded.
//
// A single candidate is returned without being probed. That is a shortcut,
// not a guarantee the port works: there is nothing to choose between.
func FindWorkingPort(ctx context.Context, candidates []int, probe ProbeFunc) (int, error) {
	switch len(candidates) {
	case 0:
		return 0, ErrNoCandidates
	case 1:
		return candidates[0], nil
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan ProbeOutcome, len(candidates))
	g, gctx := errgroup.WithContext(raceCtx)
	for _, port := range candidates {
		port := port
		g.Go(func() error {
			outcomes <- ProbeOutcome{Port: port, Err: probe(gctx, port)}
			return nil
		})
	}

	failures := make([]ProbeOutcome, 0, len(candidates))
	for range candidates {
		outcome := <-outcomes
		if outcome.Working() {
			cancel()
			_ = g.Wait()
			return outcome.Port, nil
		}
		failures = append(failures, outcome)
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, &AllPortsFailedError{Failures: failures}
}

// HTTPProber checks whether a port serves the web API by fetching a known
// endpoint and inspecting the JSON it returns.
type HTTPProber struct {
	Client   *http.Client
	Host     string
	Endpoint string
	Timeout  time.Duration
}

// NewHTTPProber returns a prober against ProbeHost. Zero values fall back to
// the defaults.
func NewHTTPProber(endpoint string, timeout time.Duration) *HTTPProber {
	if endpoint == "" {
		endpoint = DefaultProbeEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &HTTPProber{
		Client:   http.DefaultClient,
		Host:     ProbeHost,
		Endpoint: endpoint,
		Timeout:  timeout,
	}
}

// URL returns the probe URL for port.
func (p *HTTPProber) URL(port int) string {
	return fmt.Sprintf("http://%s/web-api/v1/%s",
		net.JoinHostPort(p.Host, strconv.Itoa(port)),
		strings.TrimPrefix(p.Endpoint, "/"))
}

// Probe issues one GET against port. It satisfies ProbeFunc.
func (p *HTTPProber) Probe(ctx context.Context, port int) error {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(port), nil)
	if err != nil {
		return err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBody))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	return ClassifyPayload(body)
}

// ClassifyPayload decides whether a probe response looks like the API.
//
// The service does not document a health contract, so this is best-effort:
// anything that is not JSON, is null or an empty object/array/string, or has a
// top-level "success": false or "error" key counts as a failure.
func ClassifyPayload(body []byte) error {
	if !gjson.ValidBytes(body) {
		return ErrInvalidPayload
	}
	res := gjson.ParseBytes(body)
	switch {
	case res.Type == gjson.Null,
		res.Type == gjson.String && res.Str == "",
		res.IsObject() && len(res.Map()) == 0,
		res.IsArray() && len(res.Array()) == 0:
		return ErrEmptyPayload
	}
	if res.IsObject() {
		if success := res.Get("success"); success.Exists() && !success.Bool() {
			return ErrFailurePayload
		}
		if res.Get("error").Exists() {
			return ErrFailurePayload
		}
	}
	return nil
}
