package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/core"
	"ethiostartup.com/advisor/internal/store"
)

type APIHandler struct {
	advisor *core.AdvisorService
	logger  *zap.Logger
}

func NewAPIHandler(advisor *core.AdvisorService, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{advisor: advisor, logger: logger.Named("api")}
}

type QuestionRequest struct {
	Question string `json:"question"`
}

type ProcessResponse struct {
	Message       string `json:"message"`
	Success       bool   `json:"success"`
	DocumentCount *int   `json:"document_count,omitempty"`
}

type AnswerResponse struct {
	Answer  string `json:"answer"`
	Success bool   `json:"success"`
}

type ChatRecordResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type ChatHistoryResponse struct {
	ChatHistory []ChatRecordResponse `json:"chat_history"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ethio Startup Advisor API is running!"})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"docs_processed": h.advisor.Status().DocsProcessed,
	})
}

func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.advisor.Status())
}

func (h *APIHandler) ProcessDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.advisor.ProcessDocuments(r.Context())
	if err != nil {
		if isIngestInputError(err) {
			h.writeError(w, http.StatusBadRequest, err.Error(), err)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to process documents. Please try again.", err)
		return
	}
	writeJSON(w, http.StatusOK, newProcessResponse(res))
}

// ReprocessDocumentsHandler reports every failure as a server error, input
// errors included.
func (h *APIHandler) ReprocessDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.advisor.ReprocessDocuments(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Error reprocessing documents: "+err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, newProcessResponse(res))
}

func (h *APIHandler) AskQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}

	answer, err := h.advisor.AskQuestion(r.Context(), req.Question)
	switch {
	case errors.Is(err, core.ErrNotProcessed), errors.Is(err, core.ErrEmptyQuestion):
		h.writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, "Failed to process question. Please try again.", err)
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer, Success: true})
}

func (h *APIHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.advisor.ChatHistory(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load chat history", err)
		return
	}
	resp := ChatHistoryResponse{ChatHistory: make([]ChatRecordResponse, 0, len(records))}
	for _, rec := range records {
		resp.ChatHistory = append(resp.ChatHistory, ChatRecordResponse{
			Question:  rec.Question,
			Answer:    rec.Answer,
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ClearChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.advisor.ClearChatHistory(r.Context()); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to clear chat history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}

func newProcessResponse(res *core.ProcessResult) ProcessResponse {
	count := res.DocumentCount
	return ProcessResponse{Message: res.Message, Success: true, DocumentCount: &count}
}

func isIngestInputError(err error) bool {
	return errors.Is(err, store.ErrDataDirNotFound) || errors.Is(err, store.ErrNoDocuments)
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, detail string, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error(detail, zap.Error(err))
	} else {
		h.logger.Info("rejected request", zap.String("detail", detail), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
