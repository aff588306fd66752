package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db/solr"
	"github.com/kailas-cloud/bizsearch/internal/domain"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/dash"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/field"
	"github.com/kailas-cloud/bizsearch/internal/domain/search/request"
	businessuc "github.com/kailas-cloud/bizsearch/internal/usecase/business"
	healthuc "github.com/kailas-cloud/bizsearch/internal/usecase/health"
)

// maxBodyBytes caps the search request body.
const maxBodyBytes = 64 << 10

// Options configures paging and matching for the search endpoint.
type Options struct {
	DefaultRows int
	MaxRows     int
	Profile     request.Profile
}

// Server serves the business search HTTP API.
type Server struct {
	search        *businessuc.Service
	health        *healthuc.Service
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *businessuc.Service,
	health *healthuc.Service,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.DefaultRows <= 0 {
		opts.DefaultRows = request.DefaultRows
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = request.MaxRows
	}
	s := &Server{
		search: search,
		health: health,
		opts:   opts,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		queryErrorHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeBadRequest),
		engineErrorHandler,
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search/businesses", s.SearchBusinesses)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// searchRequest is the POST /search/businesses body.
type searchRequest struct {
	Query           map[string]string   `json:"query"`
	Categories      map[string][]string `json:"categories"`
	ChildQuery      map[string]string   `json:"childQuery"`
	ChildCategories map[string][]string `json:"childCategories"`
}

// SearchBusinesses handles POST /search/businesses?start=&rows=.
func (s *Server) SearchBusinesses(w http.ResponseWriter, r *http.Request) {
	start, rows, err := s.paging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	params, err := s.paramsFromRequest(req, start, rows)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFrom(businessuc.ToResult(res, params)))
}

// paging binds start and rows the way generated oapi handlers do.
func (s *Server) paging(r *http.Request) (start, rows int, err error) {
	var startParam, rowsParam *int
	if err := runtime.BindQueryParameter("form", true, false, "start", r.URL.Query(), &startParam); err != nil {
		return 0, 0, fmt.Errorf("invalid format for parameter start: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "rows", r.URL.Query(), &rowsParam); err != nil {
		return 0, 0, fmt.Errorf("invalid format for parameter rows: %w", err)
	}

	rows = s.opts.DefaultRows
	if rowsParam != nil && *rowsParam > 0 {
		rows = *rowsParam
	}
	rows = min(rows, s.opts.MaxRows)

	if startParam != nil {
		if *startParam < 0 {
			return 0, 0, errors.New("start must not be negative")
		}
		start = *startParam
	}
	return start, rows, nil
}

func (s *Server) paramsFromRequest(req searchRequest, start, rows int) (*request.Params, error) {
	categories, err := categoriesFrom(req.Categories, false)
	if err != nil {
		return nil, err
	}
	childCategories, err := categoriesFrom(req.ChildCategories, true)
	if err != nil {
		return nil, err
	}

	var boosts []request.Boost
	if value := req.Query[request.ValueKey]; value != "" {
		boosts = request.NameBoosts(solr.PrepareQuery(value, dash.None, true))
	}

	return request.New(request.Input{
		Query:           req.Query,
		Categories:      categories,
		ChildQuery:      req.ChildQuery,
		ChildCategories: childCategories,
		FullQueryBoosts: boosts,
		Start:           start,
		Rows:            rows,
	}, s.opts.Profile)
}

func categoriesFrom(raw map[string][]string, nested bool) (map[field.Field][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[field.Field][]string, len(raw))
	for name, values := range raw {
		f, err := field.ParseCategory(name, nested)
		if err != nil {
			return nil, err
		}
		out[f] = values
	}
	return out, nil
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}
