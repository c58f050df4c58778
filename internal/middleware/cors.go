package middleware

import "net/http"

// CORS returns a middleware that allows browser clients served from
// allowedOrigin to call this API. The original deployment fronted a
// single-page app on another port, so cross-origin requests are the
// normal case, not an edge case.
//
// An empty allowedOrigin disables the headers entirely — same-origin
// deployments shouldn't advertise anything.
//
// PREFLIGHT:
// Browsers send an OPTIONS request before any call with an Authorization
// header. We answer it here with 200 and no body; it never reaches the
// router's routes.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				// Responses differ per Origin — caches must key on it.
				w.Header().Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
