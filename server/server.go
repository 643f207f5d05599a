// Package server exposes the extraction pipeline over HTTP: document
// payloads in, structured bills of materials out, plus the feedback
// endpoints feeding the confidence learner. It is a thin I/O shell; no
// extraction logic lives here.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/tsawler/bomex"
	"github.com/tsawler/bomex/learning"
	"github.com/tsawler/bomex/model"
)

// Server wires the pipeline and the learning engine to HTTP handlers.
type Server struct {
	cfg     *Config
	learner *learning.Engine
	log     *slog.Logger
}

// New creates a server around a shared learning engine. Each request
// runs its own pipeline instance; the engine is the only shared state.
func New(cfg *Config, learner *learning.Engine, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, learner: learner, log: logger}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/extract", s.handleExtract)
	r.Post("/feedback", s.handleFeedback)
	r.Get("/feedback/summary", s.handleFeedbackSummary)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "POST /extract verarbeitet vorverarbeitete Zeichnungsdaten zu einer Stückliste.",
	})
}

// handleExtract accepts a pre-extracted document payload and returns the
// extraction result. With ?strict=1 the fallback tiers are disabled and
// a table-less document yields 422.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body unreadable")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	doc, err := decodeDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pipeline := bomex.New().WithLearner(s.learner)

	var result *model.ExtractionResult
	if r.URL.Query().Get("strict") == "1" {
		result, err = pipeline.ExtractStrict(doc)
	} else {
		result, err = pipeline.Extract(doc)
	}
	switch {
	case errors.Is(err, bomex.ErrNoBOM):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, bomex.ErrMalformedDocument):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Error("extraction failed", "source", doc.Source, "error", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	result.Metadata["extraction_id"] = uuid.NewString()
	s.log.Info("document extracted",
		"source", doc.Source,
		"items", len(result.Items),
		"mode", result.Metadata[model.MetaMode],
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid feedback payload")
		return
	}
	if len(payload.Ratings) == 0 {
		writeError(w, http.StatusBadRequest, "no ratings submitted")
		return
	}

	ratings := make([]learning.Rating, 0, len(payload.Ratings))
	for _, entry := range payload.Ratings {
		if entry.Item == nil {
			continue
		}
		ratings = append(ratings, learning.Rating{Item: entry.Item, Correct: entry.Correct})
	}

	metadata := payload.Metadata
	if payload.Document != "" {
		if metadata == nil {
			metadata = make(map[string]any)
		}
		if _, ok := metadata["document"]; !ok {
			metadata["document"] = payload.Document
		}
	}

	summary := s.learner.RecordFeedback(ratings, metadata)
	s.log.Info("feedback recorded", "ratings", len(ratings), "total", summary.TotalFeedback)
	writeJSON(w, http.StatusOK, feedbackResponse{Status: "ok", Summary: summary})
}

func (s *Server) handleFeedbackSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.learner.Summary())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}
