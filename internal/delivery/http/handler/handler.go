package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sladedigital/places-service/internal/delivery/http/request"
	"github.com/sladedigital/places-service/internal/delivery/http/response"
	"github.com/sladedigital/places-service/internal/entity"
	"github.com/sladedigital/places-service/internal/repository"
	"github.com/sladedigital/places-service/internal/usecase"
	"github.com/sladedigital/places-service/pkg/utils"
)

type Handler struct {
	scraper usecase.Scraper
}

func NewHandler(scraper usecase.Scraper) *Handler {
	return &Handler{scraper: scraper}
}

// HandleScrape triggers a full scrape run for a query. A timed-out run maps
// to 504, a recently-scraped query without force to 409, everything else
// fatal to 500.
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	var req request.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		h.writeJSONError(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.MaxPlaces < 0 {
		h.writeJSONError(w, "max_places must be >= 1", http.StatusBadRequest)
		return
	}

	headless := true
	if req.Headless != nil {
		headless = *req.Headless
	}
	scrapeReq := entity.ScrapeRequest{
		Query:     req.Query,
		MaxPlaces: req.MaxPlaces,
		Lang:      req.Lang,
		Headless:  headless,
		Force:     req.Force,
		Deadline:  time.Duration(req.TimeoutSeconds) * time.Second,
	}

	slog.Info("Received scrape request", "query", req.Query, "max_places", req.MaxPlaces, "lang", req.Lang)
	places, err := h.scraper.Run(r.Context(), scrapeReq)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRunTimeout):
			h.writeJSONError(w, err.Error(), http.StatusGatewayTimeout)
		case errors.Is(err, usecase.ErrQueryRecentlyScraped):
			h.writeJSONError(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("Scrape run failed", "query", req.Query, "error", err)
			h.writeJSONError(w, "An internal error occurred during scraping: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, response.ScrapeResponse{
		Source:  utils.DeriveSourceID(req.Query),
		Count:   len(places),
		Results: places,
	})
}

// HandleHistory returns run summaries, optionally filtered by ?source=.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.scraper.History(r.Context(), r.URL.Query().Get("source"))
	if err != nil {
		slog.Error("Failed to fetch scrape history", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.HistoryResponse{Count: len(rows), History: rows})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
