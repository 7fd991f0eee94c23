package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vinser/marsrover/internal/observability"
)

// NewRouter wires the roverd API. limiter may be nil to disable rate limiting.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(RateLimitMiddleware(limiter))
	api.Use(TimeoutMiddleware(requestTimeout))
	api.HandleFunc("/grids", h.CreateGrid).Methods(http.MethodPost)
	api.HandleFunc("/grids/{id}", h.GetGrid).Methods(http.MethodGet)
	api.HandleFunc("/rovers", h.LaunchRover).Methods(http.MethodPost)
	api.HandleFunc("/rovers", h.ListRovers).Methods(http.MethodGet)
	api.HandleFunc("/rovers/{id}", h.GetRover).Methods(http.MethodGet)
	api.HandleFunc("/rovers/{id}", h.DeleteRover).Methods(http.MethodDelete)
	api.HandleFunc("/rovers/{id}/commands", h.ExecuteCommands).Methods(http.MethodPost)
	return router
}
