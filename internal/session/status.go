package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/remote"
)

// StatusCell caches the last readiness snapshot. A nil snapshot means the
// service has not answered yet.
type StatusCell struct {
	svc    Service
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot *remote.ReadinessSnapshot
}

func NewStatusCell(svc Service, logger *zap.Logger) *StatusCell {
	return &StatusCell{svc: svc, logger: logger.Named("status")}
}

// Refresh replaces the snapshot wholesale. Failures are logged and leave the
// previous snapshot in place.
func (c *StatusCell) Refresh(ctx context.Context) {
	snap, err := c.svc.FetchStatus(ctx)
	if err != nil {
		c.logger.Warn("Error checking status", zap.Error(err))
		return
	}
	if !live(ctx) {
		return
	}

	c.mu.Lock()
	c.snapshot = &snap
	c.mu.Unlock()
}

func (c *StatusCell) Snapshot() (remote.ReadinessSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return remote.ReadinessSnapshot{}, false
	}
	return *c.snapshot, true
}

// DocsProcessed is the only flag that gates the Q&A view.
func (c *StatusCell) DocsProcessed() bool {
	snap, ok := c.Snapshot()
	return ok && snap.DocsProcessed
}
