package api

import (
	"net/http"

	"go.uber.org/zap"
)

// Handler adapts handlers that return errors into http.Handler.
type Handler func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP implements http.Handler.
func (handler Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := handler(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// RecovererMiddleware converts panics into 500 responses.
func RecovererMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("panic recovered", zap.Any("panic", recovered))
					WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
						Error: ErrorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"},
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
