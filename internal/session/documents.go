package session

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/remote"
)

// DocumentController drives the process and reprocess ingest actions. The two
// share one in-flight token and one status message.
type DocumentController struct {
	svc    Service
	status *StatusCell
	logger *zap.Logger

	processing atomic.Bool

	mu      sync.RWMutex
	message string
}

func NewDocumentController(svc Service, status *StatusCell, logger *zap.Logger) *DocumentController {
	return &DocumentController{svc: svc, status: status, logger: logger.Named("documents")}
}

func (d *DocumentController) Processing() bool {
	return d.processing.Load()
}

func (d *DocumentController) StatusMessage() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.message
}

// CanReprocess reports whether reprocessing should be offered.
func (d *DocumentController) CanReprocess() bool {
	return d.status.DocsProcessed()
}

// TriggerProcess starts first-time ingestion. It returns false without
// issuing a request when another ingest is already in flight.
func (d *DocumentController) TriggerProcess(ctx context.Context) bool {
	return d.run(ctx, "process", d.svc.ProcessDocuments)
}

func (d *DocumentController) TriggerReprocess(ctx context.Context) bool {
	return d.run(ctx, "reprocess", d.svc.ReprocessDocuments)
}

func (d *DocumentController) run(ctx context.Context, op string, call func(context.Context) (remote.IngestResult, error)) bool {
	if !d.processing.CompareAndSwap(false, true) {
		d.logger.Debug("ingest already in flight", zap.String("op", op))
		return false
	}
	defer d.processing.Store(false)

	d.setMessage(ctx, "")

	res, err := call(ctx)
	if err == nil && !res.Success {
		err = &remote.ApplicationFailure{Op: op, Message: res.Message}
	}
	if err != nil {
		d.logger.Warn("ingest failed", zap.String("op", op), zap.Error(err))
		d.setMessage(ctx, remote.FailureMessage(err))
		return true
	}

	fields := []zap.Field{zap.String("op", op)}
	if res.DocumentCount != nil {
		fields = append(fields, zap.Int("document_count", *res.DocumentCount))
	}
	d.logger.Info("ingest completed", fields...)

	d.setMessage(ctx, remote.SuccessMessage(res.Message))
	d.status.Refresh(ctx)
	return true
}

func (d *DocumentController) setMessage(ctx context.Context, msg string) {
	if !live(ctx) {
		return
	}
	d.mu.Lock()
	d.message = msg
	d.mu.Unlock()
}
