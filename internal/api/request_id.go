package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header a caller may set to propagate its own
// correlation identifier through to the device logs.
const RequestIDHeader = "x-request-id"

type contextKey struct{}

var requestIDKey contextKey

// RequestIDMiddleware tags every request with an identifier, minting one
// when the caller did not supply it, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID returns the identifier tagged onto the request, or "" when
// the middleware did not run.
func GetRequestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
