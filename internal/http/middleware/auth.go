package middleware

import "net/http"

type contextKey string

const UserKey contextKey = "username"

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Context().Value(UserKey)
		if username == nil || username == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Username returns the authenticated username from the request context, or
// the empty string when the request is anonymous.
func Username(r *http.Request) string {
	if v, ok := r.Context().Value(UserKey).(string); ok {
		return v
	}
	return ""
}
