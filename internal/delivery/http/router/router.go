package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sladedigital/places-service/internal/delivery/http/handler"
	"github.com/sladedigital/places-service/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/scrape", h.HandleScrape)
	mux.HandleFunc("GET /api/history", h.HandleHistory)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	var chained http.Handler = mux
	chained = middleware.Metrics(chained)
	chained = middleware.Logging(chained)

	return chained
}
