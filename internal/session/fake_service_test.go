package session

import (
	"context"
	"sync"
	"time"

	"ethiostartup.com/advisor/internal/remote"
)

// fakeService is an in-memory Service. When gate is set, ingest and ask calls
// signal entered and then block until gate is closed.
type fakeService struct {
	mu sync.Mutex

	status     remote.ReadinessSnapshot
	statusErr  error
	history    []remote.ChatRecord
	historyErr error
	clearErr   error
	ingest     remote.IngestResult
	ingestErr  error
	answer     remote.AnswerResult
	askErr     error

	gate    chan struct{}
	entered chan struct{}

	calls map[string]int
	asked []string
}

func newFakeService() *fakeService {
	return &fakeService{calls: map[string]int{}}
}

func (f *fakeService) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeService) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeService) wait() {
	if f.gate == nil {
		return
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	<-f.gate
}

func (f *fakeService) FetchStatus(ctx context.Context) (remote.ReadinessSnapshot, error) {
	f.record("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeService) FetchHistory(ctx context.Context) ([]remote.ChatRecord, error) {
	f.record("history")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]remote.ChatRecord, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeService) ClearHistory(ctx context.Context) error {
	f.record("clear")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.history = nil
	return nil
}

func (f *fakeService) ProcessDocuments(ctx context.Context) (remote.IngestResult, error) {
	f.record("process")
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ingestErr == nil && f.ingest.Success {
		f.status = remote.ReadinessSnapshot{DocsProcessed: true, VectorStoreReady: true, RetrieverReady: true, RAGChainReady: true, MemoryReady: true}
	}
	return f.ingest, f.ingestErr
}

func (f *fakeService) ReprocessDocuments(ctx context.Context) (remote.IngestResult, error) {
	f.record("reprocess")
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ingest, f.ingestErr
}

func (f *fakeService) AskQuestion(ctx context.Context, question string) (remote.AnswerResult, error) {
	f.record("ask")
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, question)
	if f.askErr != nil {
		return remote.AnswerResult{}, f.askErr
	}
	if f.answer.Success {
		f.history = append(f.history, remote.ChatRecord{
			Question:  question,
			Answer:    f.answer.Answer,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	return f.answer, nil
}
