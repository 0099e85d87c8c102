package session

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session wires the cells and controllers over one Service and owns the
// context every action runs under.
type Session struct {
	Status    *StatusCell
	History   *HistoryStore
	Documents *DocumentController
	Questions *QAController

	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

func New(svc Service, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("session")

	status := NewStatusCell(svc, logger)
	history := NewHistoryStore(svc, logger)
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		Status:    status,
		History:   history,
		Documents: NewDocumentController(svc, status, logger),
		Questions: NewQAController(svc, history, logger),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Context is canceled by Close. Actions dispatched by the view run under it.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Mount loads status and history concurrently. Both refreshes swallow their
// own failures, so Mount only returns once both have settled.
func (s *Session) Mount() {
	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		s.Status.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		s.History.Refresh(ctx)
		return nil
	})
	_ = g.Wait()
	s.logger.Debug("session mounted", zap.Bool("docs_processed", s.Status.DocsProcessed()))
}

// Close cancels in-flight requests and stops any late response from being
// written. It is safe to call more than once.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}
