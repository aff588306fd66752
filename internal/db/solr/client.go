package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/metrics"
)

// Compile-time check: Client implements db.Engine.
var _ db.Engine = (*Client)(nil)

// maxErrorBody bounds how much of a non-JSON error response is kept.
const maxErrorBody = 512

// Config holds connection parameters for a Solr core.
type Config struct {
	BaseURL  string
	Core     string
	Timeout  time.Duration
	MaxQPS   float64 // 0 = unlimited
	Username string
	Password string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client queries a Solr core through the JSON Request API.
type Client struct {
	http     *http.Client
	queryURL string
	pingURL  string
	username string
	password string
	limiter  *rate.Limiter
}

// New creates a Solr client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Core == "" {
		return nil, fmt.Errorf("core is required")
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	base := strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Core
	c := &Client{
		http:     hc,
		queryURL: base + "/query",
		pingURL:  base + "/admin/ping?wt=json",
		username: cfg.Username,
		password: cfg.Password,
	}
	if cfg.MaxQPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxQPS), max(1, int(cfg.MaxQPS)))
	}
	return c, nil
}

type solrError struct {
	Msg  string `json:"msg"`
	Code int    `json:"code"`
}

type solrResponse struct {
	Response *struct {
		NumFound int              `json:"numFound"`
		Start    int              `json:"start"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
	Facets map[string]json.RawMessage `json:"facets"`
	Error  *solrError                 `json:"error"`
}

// Query runs p with the given page window. Errors reported by Solr are
// returned as *db.QueryError; everything else is a *db.Error.
func (c *Client) Query(ctx context.Context, p *db.Payload, start, rows int) (*db.QueryResult, error) {
	body := *p
	body.Offset = start
	body.Limit = rows

	data, err := json.Marshal(&body)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("encode payload: %w", err)}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL, bytes.NewReader(data))
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	began := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observe("error", began)
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observe("error", began)
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("read response: %w", err)}
	}

	var sr solrResponse
	decodeErr := json.Unmarshal(raw, &sr)

	if decodeErr == nil && sr.Error != nil {
		observe("query_error", began)
		code := sr.Error.Code
		if code == 0 {
			code = resp.StatusCode
		}
		return nil, &db.QueryError{Code: code, Msg: sr.Error.Msg}
	}
	if resp.StatusCode/100 != 2 {
		observe("error", began)
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw))}
	}
	if decodeErr != nil {
		observe("error", began)
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if sr.Response == nil {
		observe("error", began)
		return nil, &db.Error{Op: db.OpQuery, Err: errors.New("response section missing")}
	}

	observe("ok", began)
	return &db.QueryResult{
		NumFound: sr.Response.NumFound,
		Start:    sr.Response.Start,
		Docs:     sr.Response.Docs,
		Facets:   sr.Facets,
	}, nil
}

// Ping checks that the core answers its ping handler.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pingURL, http.NoBody)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}

// WaitForReady polls Ping until Solr responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for solr: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (c *Client) auth(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

func observe(status string, began time.Time) {
	metrics.SolrRequestsTotal.WithLabelValues(status).Inc()
	metrics.SolrRequestDuration.WithLabelValues(status).Observe(time.Since(began).Seconds())
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
