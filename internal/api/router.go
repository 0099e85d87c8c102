package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(apiHandler *APIHandler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/", apiHandler.RootHandler)

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)
		r.Get("/status", apiHandler.StatusHandler)

		r.Post("/process-documents", apiHandler.ProcessDocumentsHandler)
		r.Post("/reprocess-documents", apiHandler.ReprocessDocumentsHandler)
		r.Post("/ask-question", apiHandler.AskQuestionHandler)

		r.Get("/chat-history", apiHandler.ChatHistoryHandler)
		r.Delete("/chat-history", apiHandler.ClearChatHistoryHandler)
	})

	return r
}

// requestLogger logs one line per request, at a level picked from the status.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case status >= 500:
				logger.Error("HTTP request", fields...)
			case status >= 400:
				logger.Warn("HTTP request", fields...)
			default:
				logger.Info("HTTP request", fields...)
			}
		})
	}
}
