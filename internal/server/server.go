package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ewanbell/choretab/internal/handler"
	"github.com/ewanbell/choretab/internal/ledger"
	"github.com/ewanbell/choretab/internal/middleware"
	"github.com/ewanbell/choretab/internal/store"
	ws "github.com/ewanbell/choretab/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	choreH       *handler.ChoreHandler
	ledgerH      *handler.LedgerHandler
	profileH     *handler.ProfileHandler
	settingsH    *handler.SettingsHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, policy ledger.Policy, avatarDir string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	choreStore := store.NewChoreStore(db)
	ledgerStore := store.NewLedgerStore(db)
	sessionStore := store.NewSessionStore(db)
	settingsStore := store.NewSettingsStore(db)

	engine := ledger.NewEngine(userStore, ledgerStore, settingsStore, policy, logger.With("component", "engine"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		choreH:       handler.NewChoreHandler(choreStore, engine, hub, logger.With("component", "chore")),
		ledgerH:      handler.NewLedgerHandler(ledgerStore, userStore, engine, hub, logger.With("component", "ledger")),
		profileH:     handler.NewProfileHandler(userStore, avatarDir, logger.With("component", "profile")),
		settingsH:    handler.NewSettingsHandler(settingsStore, logger.With("component", "settings")),
		userStore:    userStore,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("PUT /api/password", s.authH.ChangePassword)

	// Profile
	mux.HandleFunc("GET /api/profile", s.profileH.Get)
	mux.HandleFunc("PUT /api/profile", s.profileH.Update)
	mux.HandleFunc("POST /api/profile/avatar", s.profileH.UploadAvatar)

	// Chore catalog
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Add)
	mux.HandleFunc("DELETE /api/chores/{name}", s.choreH.Remove)
	mux.HandleFunc("POST /api/chores/{name}/complete", s.choreH.Complete)

	// One-off entries
	mux.HandleFunc("POST /api/completions", s.choreH.OneOff)

	// Ledger
	mux.HandleFunc("GET /api/ledger/session", s.ledgerH.Session)
	mux.HandleFunc("GET /api/ledger/history", s.ledgerH.History)
	mux.HandleFunc("POST /api/ledger/clear", s.ledgerH.ClearSession)
	mux.HandleFunc("GET /api/summary", s.ledgerH.Summary)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
