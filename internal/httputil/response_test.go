package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/internal/model"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", model.ErrContentRequired, http.StatusBadRequest, ErrCodeBadRequest},
		{"ad-hoc validation", model.ValidationError("invalid allergy: X"), http.StatusBadRequest, ErrCodeBadRequest},
		{"not found", model.ErrPostNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", model.ErrUserNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", model.ErrEmailExists, http.StatusConflict, ErrCodeConflict},
		{"unauthenticated", model.ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"not owner", model.ErrNotPostOwner, http.StatusForbidden, ErrCodeForbidden},
		{"not comment owner", model.ErrNotCommentOwner, http.StatusForbidden, ErrCodeForbidden},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestWriteDomainError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, errors.New("pq: password authentication failed"))

	var body ErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&body)
	if body.Error.Message != "Internal server error" {
		t.Errorf("message = %q, want generic message", body.Error.Message)
	}
}
