// Package session holds the client-side state of an advisor session: the
// readiness cell, chat history, and the document and question controllers.
//
// Cells are written only by the controller that owns them. Every write is
// made under the session context, so a response arriving after Close is
// dropped instead of landing in discarded state.
package session

import (
	"context"

	"ethiostartup.com/advisor/internal/remote"
)

// Service is the remote advisor contract. *remote.Client satisfies it.
type Service interface {
	FetchStatus(ctx context.Context) (remote.ReadinessSnapshot, error)
	FetchHistory(ctx context.Context) ([]remote.ChatRecord, error)
	ClearHistory(ctx context.Context) error
	ProcessDocuments(ctx context.Context) (remote.IngestResult, error)
	ReprocessDocuments(ctx context.Context) (remote.IngestResult, error)
	AskQuestion(ctx context.Context, question string) (remote.AnswerResult, error)
}

var _ Service = (*remote.Client)(nil)

// live reports whether results produced under ctx may still be written.
func live(ctx context.Context) bool {
	return ctx.Err() == nil
}
