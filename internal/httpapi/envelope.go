package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeBadRequest       = "bad_request"
	codeValidation       = "validation_error"
	codeConflict         = "conflict"
	codeStoreUnavailable = "store_unavailable"
	codeUnsupported      = "unsupported_request"
	codeInternal         = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respond writes env in the request's format family.
func respond(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	if isProtobuf(r) {
		writeProto(w, status, env)
		return
	}
	writeJSON(w, status, env)
}

func writeData(w http.ResponseWriter, r *http.Request, data any) {
	respond(w, r, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	respond(w, r, status, Envelope{Error: &APIError{Code: code, Message: msg}})
}

// writeServiceError maps a service error onto its HTTP status and code.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case service.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, store.ErrEmployeeIDConflict):
		writeError(w, r, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		s.logger.Warn(op+" store unavailable", zap.Error(err), zap.String("request_id", requestID(r.Context())))
		writeError(w, r, http.StatusServiceUnavailable, codeStoreUnavailable, "store unavailable, try again")
	default:
		s.logger.Error(op+" error", zap.Error(err), zap.String("request_id", requestID(r.Context())))
		writeError(w, r, http.StatusInternalServerError, codeInternal, "unexpected server error")
	}
}
