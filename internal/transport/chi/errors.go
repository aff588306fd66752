package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizsearch/internal/db"
	"github.com/kailas-cloud/bizsearch/internal/domain"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeUnauthorized      = "unauthorized"
	codeInvalidQuery      = "invalid_query"
	codeSearchUnavailable = "search_unavailable"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

// queryErrorHandler reports queries Solr rejected. The engine message is
// passed through since it names the offending clause.
func queryErrorHandler(w http.ResponseWriter, err error) bool {
	qe, ok := db.AsQueryError(err)
	if !ok {
		return false
	}
	writeError(w, http.StatusBadRequest, codeInvalidQuery, qe.Msg)
	return true
}

// engineErrorHandler maps backend failures to 503.
func engineErrorHandler(w http.ResponseWriter, err error) bool {
	var dbErr *db.Error
	if !errors.As(err, &dbErr) && !errors.Is(err, domain.ErrSearchUnavailable) {
		return false
	}
	writeError(w, http.StatusServiceUnavailable, codeSearchUnavailable, domain.ErrSearchUnavailable.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
