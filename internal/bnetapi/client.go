// Package bnetapi is a client for the web API StarCraft serves on a loopback
// port while it is running.
package bnetapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dsmmcken/bnetdata/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHost    = "127.0.0.1"
	DefaultTimeout = 15 * time.Second
)

// ErrSearchTooShort is returned for name searches under MinSearchLength
// characters; the server rejects them.
var ErrSearchTooShort = fmt.Errorf("search term must be at least %d characters", MinSearchLength)

// ErrNoPrimaryLadder is returned when the leaderboard index has no global
// 1v1 leaderboard.
var ErrNoPrimaryLadder = errors.New("no global 1v1 leaderboard in index")

// APIError is returned when the server answers with a non-200 status.
type APIError struct {
	URL    string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Status)
}

// PlayerNotFoundError is returned when a player lookup has no results.
type PlayerNotFoundError struct {
	Query string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %q not found", e.Query)
}

// Options configures a Client.
type Options struct {
	// Host defaults to DefaultHost.
	Host string
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client talks to one running game. The leaderboard index is fetched once
// and reused for the life of the client.
type Client struct {
	host    string
	port    int
	timeout time.Duration
	http    *http.Client
	log     logrus.FieldLogger

	mu     sync.Mutex
	index  *LeaderboardIndex
	ladder Leaderboard
}

// New creates a client for the API on port.
func New(port int, opts Options) *Client {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		host:    host,
		port:    port,
		timeout: timeout,
		http:    hc,
		log:     logging.WithComponent(logging.OrDiscard(opts.Logger), "bnetapi"),
	}
}

// URL returns the address of an API resource. version is the web-api
// version segment, v1 for most resources.
func (c *Client) URL(path string, query url.Values, version int) string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(c.host, strconv.Itoa(c.port)),
		Path:   fmt.Sprintf("/web-api/v%d/%s", version, strings.TrimPrefix(path, "/")),
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON fetches rawURL and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	log := c.log.WithField(logging.FieldURL, rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithField(logging.FieldError, err.Error()).Debug("request failed")
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	log.WithFields(logrus.Fields{
		"status":              resp.StatusCode,
		logging.FieldDuration: time.Since(start).Milliseconds(),
	}).Debug("api call")

	if resp.StatusCode != http.StatusOK {
		return &APIError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return nil
}
