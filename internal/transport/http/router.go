package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/domain"
)

// SessionCounter reports how many assessments are currently open.
type SessionCounter interface {
	LiveCount(ctx context.Context) (int, error)
}

type statsResponse struct {
	LiveSessions int `json:"liveSessions"`
}

// NewRouter wires health, read-only assessment data and the websocket endpoint.
func NewRouter(service *app.AssessmentService, sessions SessionCounter, log *slog.Logger) http.Handler {
	ws := NewWSHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/classifications", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, domain.Classifications())
		})
		r.Get("/questions", func(w http.ResponseWriter, r *http.Request) {
			bank, err := service.QuestionBank(r.Context())
			if err != nil {
				log.Error("load question bank failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, errorPayload{Message: err.Error()})
				return
			}
			respondJSON(w, http.StatusOK, bank)
		})
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			live, err := sessions.LiveCount(r.Context())
			if err != nil {
				log.Error("count live sessions failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, errorPayload{Message: err.Error()})
				return
			}
			respondJSON(w, http.StatusOK, statsResponse{LiveSessions: live})
		})
	})
	return r
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
