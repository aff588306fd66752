package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/db/solr"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
	businessuc "github.com/kailas-cloud/bizsearch/internal/usecase/business"
	healthuc "github.com/kailas-cloud/bizsearch/internal/usecase/health"
)

// --- Fakes ---

type engineReply struct {
	res *db.QueryResult
	err error
}

type fakeEngine struct {
	replies  []engineReply
	payloads []*db.Payload
	starts   []int
	rows     []int
}

func (e *fakeEngine) Query(_ context.Context, p *db.Payload, start, rows int) (*db.QueryResult, error) {
	e.payloads = append(e.payloads, p)
	e.starts = append(e.starts, start)
	e.rows = append(e.rows, rows)
	r := e.replies[min(len(e.payloads), len(e.replies))-1]
	return r.res, r.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(_ context.Context) error { return p.err }

func newTestRouter(t *testing.T, engine *fakeEngine, solrPing, cachePing healthuc.Pinger) http.Handler {
	t.Helper()
	qb := solr.NewQueryBuilder(0)
	srv := NewServer(
		businessuc.New(qb, qb, engine),
		healthuc.New(solrPing, cachePing),
		Options{DefaultRows: 25, MaxRows: 50, Profile: request.BusinessProfile()},
		zap.NewNop(),
	)
	return NewRouter(srv, nil, zap.NewNop())
}

func doSearch(t *testing.T, h http.Handler, query, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/search/businesses"+query, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

const acmeBody = `{"query":{"value":"Acme & Sons"},"categories":{"status":["ACTIVE"]}}`

// --- Search ---

func TestSearchBusinesses_Success(t *testing.T) {
	engine := &fakeEngine{replies: []engineReply{{res: &db.QueryResult{
		NumFound: 1,
		Docs:     []map[string]any{{"identifier": "BC0000001", "name": "ACME & SONS LTD."}},
		Facets: map[string]json.RawMessage{
			"count":  json.RawMessage(`1`),
			"status": json.RawMessage(`{"buckets":[{"val":"ACTIVE","count":1}]}`),
		},
	}}}}
	h := newTestRouter(t, engine, fakePinger{}, nil)

	rr := doSearch(t, h, "?start=5&rows=20", acmeBody)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Facets struct {
			Fields map[string][]map[string]any `json:"fields"`
		} `json:"facets"`
		SearchResults struct {
			TotalResults int `json:"totalResults"`
			QueryInfo    struct {
				Start int `json:"start"`
				Rows  int `json:"rows"`
			} `json:"queryInfo"`
			Results []map[string]any `json:"results"`
		} `json:"searchResults"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SearchResults.TotalResults != 1 || len(resp.SearchResults.Results) != 1 {
		t.Errorf("unexpected results: %+v", resp.SearchResults)
	}
	if resp.SearchResults.QueryInfo.Start != 5 || resp.SearchResults.QueryInfo.Rows != 20 {
		t.Errorf("unexpected query info: %+v", resp.SearchResults.QueryInfo)
	}
	if got := resp.Facets.Fields["status"]; len(got) != 1 || got[0]["value"] != "ACTIVE" {
		t.Errorf("unexpected facets: %+v", resp.Facets.Fields)
	}
	if _, ok := resp.Facets.Fields["count"]; ok {
		t.Error("count must not be reported as a facet")
	}

	if engine.starts[0] != 5 || engine.rows[0] != 20 {
		t.Errorf("engine paging: start=%d rows=%d", engine.starts[0], engine.rows[0])
	}
	q := engine.payloads[0].Query
	if !strings.Contains(q, `OR (name_q_exact:"acme and sons"^5)`) {
		t.Errorf("missing full query boost in %q", q)
	}
	if !strings.Contains(strings.Join(engine.payloads[0].Filter, " "), `{!tag=status}status:("ACTIVE")`) {
		t.Errorf("missing category filter in %v", engine.payloads[0].Filter)
	}
}

func TestSearchBusinesses_Paging(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantStart int
		wantRows  int
	}{
		{"defaults", "", 0, 25},
		{"rows clamped", "?rows=500", 0, 50},
		{"zero rows uses default", "?rows=0", 0, 25},
		{"explicit", "?start=40&rows=10", 40, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{replies: []engineReply{{res: &db.QueryResult{}}}}
			h := newTestRouter(t, engine, fakePinger{}, nil)

			rr := doSearch(t, h, tt.query, acmeBody)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if engine.starts[0] != tt.wantStart || engine.rows[0] != tt.wantRows {
				t.Errorf("got start=%d rows=%d, want %d/%d",
					engine.starts[0], engine.rows[0], tt.wantStart, tt.wantRows)
			}
		})
	}
}

func TestSearchBusinesses_BadRequests(t *testing.T) {
	tests := []struct {
		name  string
		query string
		body  string
	}{
		{"non-numeric start", "?start=abc", acmeBody},
		{"negative start", "?start=-1", acmeBody},
		{"malformed body", "", `{"query":`},
		{"missing value", "", `{"query":{"bn":"123"}}`},
		{"unknown category", "", `{"query":{"value":"acme"},"categories":{"colour":["red"]}}`},
		{"child category at top level", "", `{"query":{"value":"acme"},"categories":{"partyRoles":["partner"]}}`},
		{"parent category as child", "", `{"query":{"value":"acme"},"childCategories":{"status":["ACTIVE"]}}`},
		{"value too long", "", `{"query":{"value":"` + strings.Repeat("a", request.MaxQueryLength+1) + `"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{replies: []engineReply{{res: &db.QueryResult{}}}}
			h := newTestRouter(t, engine, fakePinger{}, nil)

			rr := doSearch(t, h, tt.query, tt.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			if e := decodeError(t, rr); e.Code != codeBadRequest {
				t.Errorf("expected code %s, got %s", codeBadRequest, e.Code)
			}
			if len(engine.payloads) != 0 {
				t.Error("engine must not be called for invalid requests")
			}
		})
	}
}

func TestSearchBusinesses_UnknownCategoryNamed(t *testing.T) {
	engine := &fakeEngine{replies: []engineReply{{res: &db.QueryResult{}}}}
	h := newTestRouter(t, engine, fakePinger{}, nil)

	rr := doSearch(t, h, "", `{"query":{"value":"acme"},"categories":{"colour":["red"]}}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != codeBadRequest || !strings.Contains(e.Message, `"colour"`) {
		t.Errorf("unexpected error body: %+v", e)
	}
}

func TestSearchBusinesses_EngineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "query rejected",
			err:      &db.QueryError{Code: 400, Msg: "undefined field foo"},
			wantCode: http.StatusBadRequest,
			wantBody: codeInvalidQuery,
		},
		{
			name:     "solr unreachable",
			err:      &db.Error{Op: db.OpQuery, Err: errors.New("connection refused")},
			wantCode: http.StatusServiceUnavailable,
			wantBody: codeSearchUnavailable,
		},
		{
			name:     "unknown failure",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantBody: codeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{replies: []engineReply{{err: tt.err}}}
			h := newTestRouter(t, engine, fakePinger{}, nil)

			rr := doSearch(t, h, "", acmeBody)

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if e := decodeError(t, rr); e.Code != tt.wantBody {
				t.Errorf("expected code %s, got %s", tt.wantBody, e.Code)
			}
		})
	}
}

func TestSearchBusinesses_NestedClauseFallback(t *testing.T) {
	engine := &fakeEngine{replies: []engineReply{
		{err: &db.QueryError{Code: 400, Msg: "Query contains too many nested clauses"}},
		{res: &db.QueryResult{NumFound: 3}},
	}}
	h := newTestRouter(t, engine, fakePinger{}, nil)

	rr := doSearch(t, h, "", acmeBody)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(engine.payloads) != 2 {
		t.Fatalf("expected 2 engine calls, got %d", len(engine.payloads))
	}
	if strings.Contains(engine.payloads[1].Query, "name_q_exact") {
		t.Errorf("fallback query still boosted: %q", engine.payloads[1].Query)
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		solr       healthuc.Pinger
		cache      healthuc.Pinger
		wantCode   int
		wantStatus string
	}{
		{"healthy", fakePinger{}, fakePinger{}, http.StatusOK, "ok"},
		{"cache down", fakePinger{}, fakePinger{err: errors.New("down")}, http.StatusOK, "degraded"},
		{"solr down", fakePinger{err: errors.New("down")}, nil, http.StatusServiceUnavailable, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &fakeEngine{}, tt.solr, tt.cache)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var resp healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
		})
	}
}

// --- Router ---

func TestRouter_RequestIDAndNotFound(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, fakePinger{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/nope", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if e := decodeError(t, rr); e.Code != "not_found" {
		t.Errorf("unexpected code %q", e.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, &fakeEngine{}, fakePinger{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := JSONRecoverer(zap.NewNop())(panicky)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != codeInternal {
		t.Errorf("unexpected code %q", e.Code)
	}
}
