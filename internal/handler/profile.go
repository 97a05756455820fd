package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ewanbell/choretab/internal/auth"
	"github.com/ewanbell/choretab/internal/store"
)

const maxAvatarBytes = 1 << 20 // 1 MiB

type ProfileHandler struct {
	userStore *store.UserStore
	avatarDir string
	logger    *slog.Logger
}

func NewProfileHandler(us *store.UserStore, avatarDir string, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{userStore: us, avatarDir: avatarDir, logger: logger}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userStore.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		h.logger.Error("get profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	BaseAmount *float64 `json:"base_amount"`
	Theme      *string  `json:"theme"`
}

// Update applies the provided profile fields; absent fields are left alone.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	userID := auth.UserID(r.Context())

	if req.BaseAmount != nil {
		if err := h.userStore.SetBaseAmount(userID, *req.BaseAmount); err != nil {
			writeStoreError(w, err, "failed to update base amount")
			return
		}
	}
	if req.Theme != nil {
		if err := h.userStore.SetTheme(userID, *req.Theme); err != nil {
			writeStoreError(w, err, "failed to update theme")
			return
		}
	}

	user, err := h.userStore.GetByID(userID)
	if err != nil || user == nil {
		h.logger.Error("reload profile", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UploadAvatar stores the request body as the user's avatar image and records
// the generated reference on the profile.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxAvatarBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty upload")
		return
	}
	if len(data) > maxAvatarBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "avatar too large")
		return
	}

	if err := os.MkdirAll(h.avatarDir, 0o755); err != nil {
		h.logger.Error("create avatar dir", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	ref := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(h.avatarDir, ref), data, 0o644); err != nil {
		h.logger.Error("write avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.userStore.SetAvatar(userID, ref); err != nil {
		h.logger.Error("set avatar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"avatar": ref})
}
