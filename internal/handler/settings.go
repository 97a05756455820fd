package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ewanbell/choretab/internal/store"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetAll()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	ResetWeekday string `json:"reset_weekday"`
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.ResetWeekday != "" {
		if err := h.settingsStore.SetResetWeekday(req.ResetWeekday); err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, "unknown weekday")
				return
			}
			h.logger.Error("set reset weekday", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update settings")
			return
		}
	}

	settings, err := h.settingsStore.GetAll()
	if err != nil {
		h.logger.Error("reload settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
