package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ewanbell/choretab/internal/auth"
	"github.com/ewanbell/choretab/internal/ledger"
	"github.com/ewanbell/choretab/internal/model"
	"github.com/ewanbell/choretab/internal/store"
	"github.com/ewanbell/choretab/internal/websocket"
)

type LedgerHandler struct {
	ledgerStore *store.LedgerStore
	userStore   *store.UserStore
	engine      *ledger.Engine
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewLedgerHandler(ls *store.LedgerStore, us *store.UserStore, engine *ledger.Engine, hub *websocket.Hub, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{ledgerStore: ls, userStore: us, engine: engine, hub: hub, logger: logger}
}

func (h *LedgerHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *LedgerHandler) Session(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	events, err := h.ledgerStore.SessionEvents(ac.UserID)
	if err != nil {
		h.logger.Error("session events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session ledger")
		return
	}
	if events == nil {
		events = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	events, err := h.ledgerStore.HistoryEvents(ac.UserID)
	if err != nil {
		h.logger.Error("history events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if events == nil {
		events = []model.Completion{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ClearSession empties the session ledger without touching history or
// crediting any bonus. This is the user-facing clear button, not the weekly
// reset.
func (h *LedgerHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if err := h.ledgerStore.ClearSession(ac.UserID); err != nil {
		h.logger.Error("clear session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear completed chores")
		return
	}

	h.broadcast(websocket.NewMessage("session", "cleared", ac.Username, nil))

	w.WriteHeader(http.StatusNoContent)
}

// summaryResponse is the dashboard payload: the session log plus derived
// totals, level state, window totals, and achievement tiers.
type summaryResponse struct {
	Username         string              `json:"username"`
	BaseAmount       float64             `json:"base_amount"`
	SessionEvents    []model.Completion  `json:"session_events"`
	SessionTotal     float64             `json:"session_total"`
	GrandTotal       float64             `json:"grand_total"`
	TotalEarned      float64             `json:"total_earned"`
	Level            int                 `json:"level"`
	ProgressFraction float64             `json:"progress_fraction"`
	Last7Days        float64             `json:"last_7_days"`
	Last30Days       float64             `json:"last_30_days"`
	HistoryCount     int                 `json:"history_count"`
	Tiers            []ledger.Tier       `json:"tiers"`
	WeeklyReset      *ledger.ResetResult `json:"weekly_reset,omitempty"`
}

// Summary runs the weekly reset check first, then assembles the dashboard
// numbers from the post-reset state.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	now := time.Now()

	reset, err := h.engine.MaybeRunWeeklyReset(ac.UserID, now)
	if err != nil {
		h.logger.Error("weekly reset", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to run weekly reset")
		return
	}
	if reset.Ran {
		h.broadcast(websocket.NewMessage("weekly", "reset", ac.Username, map[string]any{
			"archived_count": reset.ArchivedCount,
			"bonus":          reset.BonusAmount,
		}))
	}

	user, err := h.userStore.GetByID(ac.UserID)
	if err != nil || user == nil {
		h.logger.Error("summary user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	events, err := h.ledgerStore.SessionEvents(ac.UserID)
	if err != nil {
		h.logger.Error("summary session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session ledger")
		return
	}
	if events == nil {
		events = []model.Completion{}
	}

	sessionTotal, err := h.ledgerStore.SessionTotal(ac.UserID)
	if err != nil {
		h.logger.Error("summary session total", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to total session ledger")
		return
	}

	last7, err := h.ledgerStore.TotalInWindow(ac.UserID, now, 7*24*time.Hour)
	if err != nil {
		h.logger.Error("summary 7d window", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}
	last30, err := h.ledgerStore.TotalInWindow(ac.UserID, now, 30*24*time.Hour)
	if err != nil {
		h.logger.Error("summary 30d window", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}

	historyCount, err := h.ledgerStore.HistoryCount(ac.UserID)
	if err != nil {
		h.logger.Error("summary history count", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count history")
		return
	}

	level, fraction := h.engine.LevelView(user)

	resp := summaryResponse{
		Username:         user.Username,
		BaseAmount:       user.BaseAmount,
		SessionEvents:    events,
		SessionTotal:     sessionTotal,
		GrandTotal:       user.BaseAmount + sessionTotal,
		TotalEarned:      user.TotalEarned,
		Level:            level,
		ProgressFraction: fraction,
		Last7Days:        last7,
		Last30Days:       last30,
		HistoryCount:     historyCount,
		Tiers:            ledger.Tiers(historyCount),
	}
	if reset.Ran {
		resp.WeeklyReset = reset
	}

	writeJSON(w, http.StatusOK, resp)
}
