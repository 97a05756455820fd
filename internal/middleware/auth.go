package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ewanbell/choretab/internal/auth"
	"github.com/ewanbell/choretab/internal/store"
)

const SessionCookieName = "choretab_session"

// RequireAuth validates the session cookie, loads the user, and populates
// AuthContext. Unauthenticated requests get a 401 JSON body; this is a JSON
// API, so no login redirect.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{
				UserID:   user.ID,
				Username: user.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
