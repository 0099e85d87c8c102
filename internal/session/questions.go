package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/remote"
)

// QAController drives the ask-question workflow.
type QAController struct {
	svc     Service
	history *HistoryStore
	logger  *zap.Logger

	loading atomic.Bool

	mu       sync.RWMutex
	question string
	answer   string
}

func NewQAController(svc Service, history *HistoryStore, logger *zap.Logger) *QAController {
	return &QAController{svc: svc, history: history, logger: logger.Named("questions")}
}

func (q *QAController) SetQuestion(text string) {
	q.mu.Lock()
	q.question = text
	q.mu.Unlock()
}

func (q *QAController) Question() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.question
}

func (q *QAController) Answer() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.answer
}

func (q *QAController) Loading() bool {
	return q.loading.Load()
}

// CanAsk mirrors the ask affordance: something to send and nothing in flight.
func (q *QAController) CanAsk() bool {
	return !q.Loading() && strings.TrimSpace(q.Question()) != ""
}

// Ask sends the current question. It is a no-op, returning false, when the
// trimmed question is empty or an ask is already in flight.
func (q *QAController) Ask(ctx context.Context) bool {
	question := strings.TrimSpace(q.Question())
	if question == "" {
		return false
	}
	if !q.loading.CompareAndSwap(false, true) {
		q.logger.Debug("ask already in flight")
		return false
	}
	defer q.loading.Store(false)

	q.setAnswer(ctx, "")

	res, err := q.svc.AskQuestion(ctx, question)
	if err == nil && !res.Success {
		err = &remote.ApplicationFailure{Op: "ask question", Message: res.Answer}
	}
	if err != nil {
		q.logger.Warn("ask failed", zap.Error(err))
		q.setAnswer(ctx, remote.FailureMessage(err))
		return true
	}

	q.setAnswer(ctx, res.Answer)
	q.history.Refresh(ctx)
	return true
}

func (q *QAController) setAnswer(ctx context.Context, answer string) {
	if !live(ctx) {
		return
	}
	q.mu.Lock()
	q.answer = answer
	q.mu.Unlock()
}
