package controller

import (
	"net/http"
	"strings"
)

// CORSMethods lists the methods the API answers to.
var CORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}

// WithCORS returns a middleware that lets browser front-ends from any origin
// call the API and short-circuits OPTIONS preflight requests with 204 No
// Content. Bearer tokens travel in the Authorization header, so credentials
// (cookies) are not allowed.
func WithCORS(next http.Handler) http.Handler {
	methods := strings.Join(CORSMethods, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept, Authorization, Origin, X-Request-Id")
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Expose-Headers", "X-Request-Id")

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
