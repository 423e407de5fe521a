package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CronKey guards scheduler-triggered endpoints with a shared secret carried
// in the X-Cron-Key header. An empty configured key disables the endpoint.
func CronKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				writeJSONError(w, http.StatusForbidden, "cron trigger disabled")
				return
			}
			got := r.Header.Get("X-Cron-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
