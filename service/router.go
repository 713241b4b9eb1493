package service

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP route table.
func NewRouter(h *Handlers, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(log), recoveryMiddleware(log))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/groups", h.ListGroups).Methods(http.MethodGet)
	api.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group}/discount/{ccy}", h.DiscountFactor).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group}/forward/{index}", h.ForwardRate).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group}/zero/{ccy}", h.ZeroRate).Methods(http.MethodGet)
	api.HandleFunc("/groups/{group}/calibrate", h.Calibrate).Methods(http.MethodPost)

	return r
}

func loggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

func recoveryMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
					respondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
