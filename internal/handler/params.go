package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"foodgram/internal/httputil"
	"foodgram/internal/model"
	"foodgram/internal/transport/http/middleware"
)

// maxJSONBody caps request bodies; recipes with many steps stay well below it
const maxJSONBody = 1 << 20

// actingUser returns the authenticated user or writes a 401.
func actingUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return nil, false
	}
	return user, true
}

// pathID reads a UUID route parameter or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		httputil.WriteBadRequest(w, "Invalid "+label+" ID")
		return "", false
	}
	return raw, true
}

// decodeJSON reads a bounded JSON body into dst or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}
