package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"foodgram/internal/httputil"
	"foodgram/internal/model"
	"foodgram/internal/service"
)

type UserHandler struct {
	userService    *service.UserService
	rankingService *service.RankingService
	mediaService   *service.MediaService
}

// NewUserHandler wires the user endpoints. mediaService may be nil when R2 is
// not configured; avatar uploads then answer 503.
func NewUserHandler(userService *service.UserService, rankingService *service.RankingService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		rankingService: rankingService,
		mediaService:   mediaService,
	}
}

// Rank lists users by published recipes, then likes received
// GET /users?username=
func (h *UserHandler) Rank(w http.ResponseWriter, r *http.Request) {
	resp, err := h.rankingService.RankUsers(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated user's profile
// GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	h.writeProfile(w, r, user.ID)
}

// GetProfile returns a user's profile with relationship sets and favorite posts
// GET /users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateMe applies a partial profile update
// PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.userService.Update(r.Context(), user, &req)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

// UpdateAvatar uploads a new avatar and removes the previous one
// PUT /users/me/avatar (multipart, field "avatar")
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	if h.mediaService == nil {
		httputil.WriteMediaDisabled(w)
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	updated, previousKey, err := h.userService.UpdateAvatar(r.Context(), user, upload)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	if previousKey != "" {
		if err := h.mediaService.DeleteObject(r.Context(), previousKey); err != nil {
			log.Printf("[UserHandler] Failed to delete old avatar %s: %v", previousKey, err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, updated)
}

// Delete removes the authenticated user's own account
// DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := actingUser(w, r)
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), user, userID); err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
