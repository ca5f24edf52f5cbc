package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arjun/vidtube-backend/internal/api/middleware"
	"github.com/arjun/vidtube-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 32 << 20

type UserHandler struct {
	userService *service.UserService
	tempDir     string
}

func NewUserHandler(userService *service.UserService, tempDir string) *UserHandler {
	return &UserHandler{userService: userService, tempDir: tempDir}
}

// Register handles the multipart registration form: text fields plus an
// avatar file (required) and a coverImage file (optional). Files are spooled
// to the temp dir and handed to the service as local paths.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond(w, http.StatusBadRequest, nil, "invalid multipart form")
		return
	}

	avatarPath, cleanupAvatar, err := h.spoolFile(r, "avatar")
	if err != nil {
		respond(w, http.StatusBadRequest, nil, "avatar image is required")
		return
	}
	defer cleanupAvatar()

	coverPath, cleanupCover, err := h.spoolFile(r, "coverImage")
	if err == nil {
		defer cleanupCover()
	} else {
		coverPath = ""
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		FullName:       r.FormValue("fullName"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, user, "user registered successfully")
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}
	respond(w, http.StatusOK, user, "current user fetched successfully")
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	updated, err := h.userService.UpdateAccount(r.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, updated, "account details updated")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", func(r *http.Request, userID uuid.UUID, path string) (any, error) {
		return h.userService.UpdateAvatar(r.Context(), userID, path)
	})
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", func(r *http.Request, userID uuid.UUID, path string) (any, error) {
		return h.userService.UpdateCoverImage(r.Context(), userID, path)
	})
}

func (h *UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, apply func(*http.Request, uuid.UUID, string) (any, error)) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond(w, http.StatusBadRequest, nil, "invalid multipart form")
		return
	}

	path, cleanup, err := h.spoolFile(r, field)
	if err != nil {
		respond(w, http.StatusBadRequest, nil, "image file is required")
		return
	}
	defer cleanup()

	updated, err := apply(r, user.ID, path)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, updated, "image updated successfully")
}

func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	profile, err := h.userService.ChannelProfile(r.Context(), chi.URLParam(r, "username"), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, profile, "channel profile fetched successfully")
}

func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	if err := h.userService.Subscribe(r.Context(), user.ID, chi.URLParam(r, "username")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "subscribed to channel")
}

func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	if err := h.userService.Unsubscribe(r.Context(), user.ID, chi.URLParam(r, "username")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, "unsubscribed from channel")
}

func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, nil, "unauthenticated request")
		return
	}

	history, err := h.userService.WatchHistory(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, history, "watch history fetched successfully")
}

// spoolFile writes a multipart upload to the temp dir and returns its path
// with a cleanup func. The caller owns cleanup even when the request fails.
func (h *UserHandler) spoolFile(r *http.Request, field string) (string, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	path, err := h.writeTemp(file, header)
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove spooled upload")
		}
	}
	return path, cleanup, nil
}

func (h *UserHandler) writeTemp(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp(h.tempDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
