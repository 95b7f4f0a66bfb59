package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"foodgram/internal/httputil"
	"foodgram/internal/model"
)

const testSecret = "middleware-secret"

type mockUserLookup struct {
	GetByIDFunc func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserLookup) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
}

func TestParseAccessToken(t *testing.T) {
	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantID  string
		wantErr bool
	}{
		{
			name:   "valid token",
			token:  func(t *testing.T) string { return signToken(t, validClaims("u-1"), testSecret) },
			wantID: "u-1",
		},
		{
			name:    "wrong secret",
			token:   func(t *testing.T) string { return signToken(t, validClaims("u-1"), "other") },
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"user_id": "u-1", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)
			},
			wantErr: true,
		},
		{
			name: "missing user_id",
			token: func(t *testing.T) string {
				return signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := ParseAccessToken(tt.token(t), testSecret)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got user %q", userID)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if userID != tt.wantID {
				t.Errorf("userID = %q, want %q", userID, tt.wantID)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	// ARRANGE
	known := &model.User{ID: "u-1", Username: "chef"}
	users := &mockUserLookup{
		GetByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			switch id {
			case known.ID:
				return known, nil
			case "broken":
				return nil, errors.New("connection reset")
			}
			return nil, model.ErrUserNotFound
		},
	}

	var seen *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AuthMiddleware(testSecret, users)(next)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantCode   string
	}{
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("u-1"), testSecret))
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "cookie fallback",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, validClaims("u-1"), testSecret)})
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "no token",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   httputil.ErrCodeUnauthorized,
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				claims := jwt.MapClaims{"user_id": "u-1", "exp": time.Now().Add(-time.Minute).Unix()}
				r.Header.Set("Authorization", "Bearer "+signToken(t, claims, testSecret))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenExpired,
		},
		{
			name: "deleted user",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("gone"), testSecret))
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   model.CodeTokenInvalid,
		},
		{
			name: "lookup failure",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("broken"), testSecret))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   httputil.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			// ACT
			handler.ServeHTTP(rec, req)

			// ASSERT
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode == "" {
				if seen == nil || seen.ID != known.ID {
					t.Errorf("context user = %+v, want %s", seen, known.ID)
				}
				return
			}
			var body httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}
