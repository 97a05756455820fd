package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ewanbell/choretab/internal/auth"
	"github.com/ewanbell/choretab/internal/database"
	"github.com/ewanbell/choretab/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*store.SessionStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, us := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/summary", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, us := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, us := setupAuthMiddlewareDB(t)

	u, err := us.Create("maya", "secret", 0)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUserID int64
	var gotUsername string
	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		gotUsername = auth.Username(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != u.ID {
		t.Errorf("context user id = %d, want %d", gotUserID, u.ID)
	}
	if gotUsername != "maya" {
		t.Errorf("context username = %q, want maya", gotUsername)
	}
}
