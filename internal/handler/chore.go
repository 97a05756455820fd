package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ewanbell/choretab/internal/auth"
	"github.com/ewanbell/choretab/internal/ledger"
	"github.com/ewanbell/choretab/internal/model"
	"github.com/ewanbell/choretab/internal/store"
	"github.com/ewanbell/choretab/internal/websocket"
)

type ChoreHandler struct {
	choreStore *store.ChoreStore
	engine     *ledger.Engine
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, engine *ledger.Engine, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{choreStore: cs, engine: engine, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type choreRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.choreStore.List()
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

// Add upserts a catalog entry. Blank names and non-positive amounts are
// accepted and dropped rather than rejected, so the add form never errors.
func (h *ChoreHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	chore, err := h.choreStore.Add(req.Name, req.Amount)
	if err != nil {
		h.logger.Error("add chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add chore")
		return
	}
	if chore == nil {
		// Input was ignored; nothing changed
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.broadcast(websocket.NewMessage("chore", "added", "", map[string]any{"name": chore.Name}))

	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) Remove(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.choreStore.Remove(name); err != nil {
		h.logger.Error("remove chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove chore")
		return
	}

	h.broadcast(websocket.NewMessage("chore", "removed", "", map[string]any{"name": name}))

	w.WriteHeader(http.StatusNoContent)
}

// Complete records a completion of a catalog chore for the signed-in user,
// snapshotting the catalog amount at this moment.
func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	chore, err := h.choreStore.GetByName(name)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	completion, err := h.engine.RecordCompletion(ac.UserID, chore.Name, chore.Amount, time.Now())
	if err != nil {
		h.logger.Error("record completion", "error", err)
		writeStoreError(w, err, "failed to record completion")
		return
	}

	h.broadcast(websocket.NewMessage("completion", "recorded", ac.Username, map[string]any{
		"name":   completion.ChoreName,
		"amount": completion.Amount,
	}))

	writeJSON(w, http.StatusCreated, completion)
}

type oneOffRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// OneOff records an ad-hoc entry that need not exist in the catalog.
func (h *ChoreHandler) OneOff(w http.ResponseWriter, r *http.Request) {
	var req oneOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	completion, err := h.engine.RecordCompletion(ac.UserID, req.Name, req.Amount, time.Now())
	if err != nil {
		h.logger.Error("record one-off", "error", err)
		writeStoreError(w, err, "failed to record entry")
		return
	}

	h.broadcast(websocket.NewMessage("completion", "recorded", ac.Username, map[string]any{
		"name":   completion.ChoreName,
		"amount": completion.Amount,
	}))

	writeJSON(w, http.StatusCreated, completion)
}
