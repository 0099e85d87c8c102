package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/remote"
)

// RecentLimit is how many history entries the sidebar shows.
const RecentLimit = 5

const (
	noticeHistoryCleared = remote.SuccessMarker + "Chat history cleared"
	noticeClearFailed    = remote.FailureMarker + "Error clearing chat history"
)

// HistoryStore is a read-through cache of the service's chat history, kept in
// the order the service returned it (oldest first).
type HistoryStore struct {
	svc    Service
	logger *zap.Logger

	mu      sync.RWMutex
	records []remote.ChatRecord
	notice  string
}

func NewHistoryStore(svc Service, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		svc:     svc,
		logger:  logger.Named("history"),
		records: []remote.ChatRecord{},
	}
}

// Refresh replaces the cache with the fetched list, or leaves it alone if the
// fetch fails.
func (h *HistoryStore) Refresh(ctx context.Context) {
	records, err := h.svc.FetchHistory(ctx)
	if err != nil {
		h.logger.Warn("Error loading chat history", zap.Error(err))
		return
	}
	if !live(ctx) {
		return
	}

	fresh := make([]remote.ChatRecord, len(records))
	copy(fresh, records)

	h.mu.Lock()
	h.records = fresh
	h.mu.Unlock()
}

// Clear asks the service to drop its history. The local cache is emptied only
// once the service confirms; on failure it is left untouched. The returned
// notice is also kept for the view.
func (h *HistoryStore) Clear(ctx context.Context) string {
	err := h.svc.ClearHistory(ctx)
	if !live(ctx) {
		return ""
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.logger.Warn("Error clearing chat history", zap.Error(err))
		h.notice = noticeClearFailed
		return h.notice
	}
	h.records = []remote.ChatRecord{}
	h.notice = noticeHistoryCleared
	return h.notice
}

func (h *HistoryStore) Notice() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.notice
}

func (h *HistoryStore) Records() []remote.ChatRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]remote.ChatRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Recent is the display slice: the last RecentLimit records, newest first.
func (h *HistoryStore) Recent() []remote.ChatRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return MostRecent(h.records, RecentLimit)
}

// MostRecent returns the last n records of an oldest-first list in reverse
// order. The input slice is not modified.
func MostRecent(records []remote.ChatRecord, n int) []remote.ChatRecord {
	if n <= 0 {
		return []remote.ChatRecord{}
	}
	start := len(records) - n
	if start < 0 {
		start = 0
	}
	tail := records[start:]
	out := make([]remote.ChatRecord, len(tail))
	for i, rec := range tail {
		out[len(tail)-1-i] = rec
	}
	return out
}
