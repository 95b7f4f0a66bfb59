package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"foodgram/internal/model"
)

// Error codes carried in the error envelope
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeMediaOff     = "MEDIA_DISABLED"
)

// ErrorResponse is the error envelope:
// {"error": {"code": "NOT_FOUND", "message": "post not found"}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes data as JSON with the given status; nil data writes no body.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode lets clients tell an expired token from a bad one.
func WriteUnauthorizedWithCode(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// WriteMediaDisabled answers uploads when no object storage is configured.
func WriteMediaDisabled(w http.ResponseWriter) {
	WriteError(w, http.StatusServiceUnavailable, ErrCodeMediaOff, "Media uploads are not configured")
}

type errorStatus struct {
	status int
	code   string
}

var statusByKind = map[model.Kind]errorStatus{
	model.KindValidation: {http.StatusBadRequest, ErrCodeBadRequest},
	model.KindNotFound:   {http.StatusNotFound, ErrCodeNotFound},
	model.KindConflict:   {http.StatusConflict, ErrCodeConflict},
	model.KindAuth:       {http.StatusUnauthorized, ErrCodeUnauthorized},
}

// WriteDomainError maps err to a response by its kind. Ownership violations
// are 403. Errors without a kind are logged and answered with a generic 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var de *model.Error
	if !errors.As(err, &de) {
		log.Printf("[HTTP] Internal error: %v", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	if isOwnershipError(err) {
		WriteError(w, http.StatusForbidden, ErrCodeForbidden, de.Message)
		return
	}
	st, ok := statusByKind[de.Kind]
	if !ok {
		log.Printf("[HTTP] Internal error: %v", err)
		WriteInternalError(w, "Internal server error")
		return
	}
	WriteError(w, st.status, st.code, de.Message)
}

func isOwnershipError(err error) bool {
	return errors.Is(err, model.ErrNotPostOwner) ||
		errors.Is(err, model.ErrNotCommentOwner) ||
		errors.Is(err, model.ErrNotProfileOwner)
}
