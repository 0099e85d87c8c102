package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"ethiostartup.com/advisor/internal/remote"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestSession(t *testing.T, svc *fakeService) *Session {
	t.Helper()
	s := New(svc, zaptest.NewLogger(t))
	t.Cleanup(s.Close)
	return s
}

func records(questions ...string) []remote.ChatRecord {
	out := make([]remote.ChatRecord, len(questions))
	for i, q := range questions {
		out[i] = remote.ChatRecord{Question: q, Answer: "a" + q, Timestamp: fmt.Sprintf("2025-01-01T00:00:0%dZ", i+1)}
	}
	return out
}

func questionsOf(recs []remote.ChatRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Question
	}
	return out
}

// =============================================================================
// STATUS CELL
// =============================================================================

func TestStatus_UnknownUntilFirstFetch(t *testing.T) {
	svc := newFakeService()
	s := newTestSession(t, svc)

	_, ok := s.Status.Snapshot()
	assert.False(t, ok)
	assert.False(t, s.Status.DocsProcessed())

	svc.status = remote.ReadinessSnapshot{DocsProcessed: true}
	s.Status.Refresh(s.Context())

	snap, ok := s.Status.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.DocsProcessed)
	assert.True(t, s.Status.DocsProcessed())
}

func TestStatus_FailureKeepsPreviousSnapshot(t *testing.T) {
	svc := newFakeService()
	svc.status = remote.ReadinessSnapshot{DocsProcessed: true, MemoryReady: true}
	s := newTestSession(t, svc)
	s.Status.Refresh(s.Context())

	svc.statusErr = &remote.TransportError{Op: "fetch status", StatusCode: 500}
	s.Status.Refresh(s.Context())

	snap, ok := s.Status.Snapshot()
	require.True(t, ok)
	assert.Equal(t, remote.ReadinessSnapshot{DocsProcessed: true, MemoryReady: true}, snap)
}

// =============================================================================
// HISTORY STORE
// =============================================================================

func TestHistory_RecentIsLastFiveNewestFirst(t *testing.T) {
	svc := newFakeService()
	svc.history = records("A", "B", "C", "D", "E", "F")
	s := newTestSession(t, svc)
	s.History.Refresh(s.Context())

	assert.Equal(t, []string{"F", "E", "D", "C", "B"}, questionsOf(s.History.Recent()))
	// Stored order is untouched.
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, questionsOf(s.History.Records()))
}

func TestMostRecent(t *testing.T) {
	assert.Empty(t, MostRecent(nil, 5))
	assert.Equal(t, []string{"B", "A"}, questionsOf(MostRecent(records("A", "B"), 5)))
	assert.Empty(t, MostRecent(records("A"), 0))

	in := records("A", "B", "C")
	_ = MostRecent(in, 2)
	assert.Equal(t, []string{"A", "B", "C"}, questionsOf(in))
}

func TestHistory_RefreshFailureIsSilent(t *testing.T) {
	svc := newFakeService()
	svc.history = records("A", "B")
	s := newTestSession(t, svc)
	s.History.Refresh(s.Context())

	svc.historyErr = errors.New("connection reset")
	s.History.Refresh(s.Context())

	assert.Equal(t, []string{"A", "B"}, questionsOf(s.History.Records()))
	assert.Empty(t, s.History.Notice())
}

func TestHistory_ClearSuccess(t *testing.T) {
	svc := newFakeService()
	svc.history = records("A", "B")
	s := newTestSession(t, svc)
	s.History.Refresh(s.Context())

	notice := s.History.Clear(s.Context())

	assert.Equal(t, "✅ Chat history cleared", notice)
	assert.Equal(t, notice, s.History.Notice())
	assert.Empty(t, s.History.Records())
}

func TestHistory_ClearFailureLeavesCacheUntouched(t *testing.T) {
	svc := newFakeService()
	svc.history = records("A", "B", "C")
	s := newTestSession(t, svc)
	s.History.Refresh(s.Context())
	before := s.History.Records()

	svc.clearErr = &remote.TransportError{Op: "clear history", StatusCode: 500}
	notice := s.History.Clear(s.Context())

	assert.Equal(t, "❌ Error clearing chat history", notice)
	assert.Equal(t, before, s.History.Records())
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

func TestDocuments_ProcessSuccessRefreshesStatusOnce(t *testing.T) {
	svc := newFakeService()
	svc.ingest = remote.IngestResult{Success: true, Message: "Loaded 42 docs"}
	s := newTestSession(t, svc)

	assert.True(t, s.Documents.TriggerProcess(s.Context()))

	assert.Contains(t, s.Documents.StatusMessage(), "Loaded 42 docs")
	assert.Equal(t, "✅ Loaded 42 docs", s.Documents.StatusMessage())
	assert.Equal(t, 1, svc.count("status"))
	assert.False(t, s.Documents.Processing())
	assert.True(t, s.Status.DocsProcessed())
	assert.True(t, s.Documents.CanReprocess())
}

func TestDocuments_TransportFailureUsesDetail(t *testing.T) {
	svc := newFakeService()
	svc.ingestErr = &remote.TransportError{Op: "process documents", StatusCode: 500, Detail: "Failed to process documents. Please try again."}
	s := newTestSession(t, svc)

	s.Documents.TriggerProcess(s.Context())

	assert.Equal(t, "❌ Error: Failed to process documents. Please try again.", s.Documents.StatusMessage())
	assert.Zero(t, svc.count("status"))
	assert.False(t, s.Documents.Processing())
}

func TestDocuments_ApplicationFailure(t *testing.T) {
	svc := newFakeService()
	svc.ingest = remote.IngestResult{Success: false, Message: "No documents found in data folder"}
	s := newTestSession(t, svc)

	s.Documents.TriggerReprocess(s.Context())

	assert.Equal(t, "❌ Error: No documents found in data folder", s.Documents.StatusMessage())
	assert.Zero(t, svc.count("status"))
	assert.Equal(t, 1, svc.count("reprocess"))
}

func TestDocuments_SecondTriggerWhileProcessingIsIgnored(t *testing.T) {
	svc := newFakeService()
	svc.ingest = remote.IngestResult{Success: true, Message: "done"}
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestSession(t, svc)

	done := make(chan bool)
	go func() { done <- s.Documents.TriggerProcess(s.Context()) }()
	<-svc.entered

	assert.True(t, s.Documents.Processing())
	assert.False(t, s.Documents.TriggerProcess(s.Context()))
	assert.False(t, s.Documents.TriggerReprocess(s.Context()))

	close(svc.gate)
	assert.True(t, <-done)

	assert.Equal(t, 1, svc.count("process"))
	assert.Zero(t, svc.count("reprocess"))
	assert.False(t, s.Documents.Processing())
}

func TestDocuments_ClearsMessageWhenStarting(t *testing.T) {
	svc := newFakeService()
	svc.ingestErr = errors.New("offline")
	s := newTestSession(t, svc)
	s.Documents.TriggerProcess(s.Context())
	require.NotEmpty(t, s.Documents.StatusMessage())

	svc.ingestErr = nil
	svc.ingest = remote.IngestResult{Success: true, Message: "ok"}
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		s.Documents.TriggerProcess(s.Context())
		close(done)
	}()
	<-svc.entered
	assert.Empty(t, s.Documents.StatusMessage())
	close(svc.gate)
	<-done
	assert.Equal(t, "✅ ok", s.Documents.StatusMessage())
}

// =============================================================================
// QUESTION / ANSWER
// =============================================================================

func TestQuestions_WhitespaceIsNoop(t *testing.T) {
	svc := newFakeService()
	s := newTestSession(t, svc)
	s.Questions.SetQuestion("first")
	svc.answer = remote.AnswerResult{Success: true, Answer: "previous answer"}
	s.Questions.Ask(s.Context())

	s.Questions.SetQuestion("   ")
	assert.False(t, s.Questions.CanAsk())
	assert.False(t, s.Questions.Ask(s.Context()))

	assert.Equal(t, 1, svc.count("ask"))
	assert.Equal(t, "previous answer", s.Questions.Answer())
}

func TestQuestions_SuccessSendsTrimmedAndRefreshesHistory(t *testing.T) {
	svc := newFakeService()
	svc.answer = remote.AnswerResult{Success: true, Answer: "## Register with MoTRI"}
	s := newTestSession(t, svc)

	s.Questions.SetQuestion("  How do I register a PLC?  ")
	assert.True(t, s.Questions.Ask(s.Context()))

	assert.Equal(t, []string{"How do I register a PLC?"}, svc.asked)
	assert.Equal(t, "## Register with MoTRI", s.Questions.Answer())
	assert.Equal(t, 1, svc.count("history"))
	assert.False(t, s.Questions.Loading())

	recent := s.History.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, "How do I register a PLC?", recent[0].Question)
}

func TestQuestions_FailureSetsErrorAnswer(t *testing.T) {
	svc := newFakeService()
	svc.askErr = &remote.TransportError{Op: "ask question", StatusCode: 400, Detail: "Please process documents first."}
	s := newTestSession(t, svc)

	s.Questions.SetQuestion("anything")
	s.Questions.Ask(s.Context())

	assert.Equal(t, "❌ Error: Please process documents first.", s.Questions.Answer())
	assert.Zero(t, svc.count("history"))
}

func TestQuestions_SecondAskWhileLoadingIsIgnored(t *testing.T) {
	svc := newFakeService()
	svc.answer = remote.AnswerResult{Success: true, Answer: "ok"}
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestSession(t, svc)
	s.Questions.SetQuestion("q")

	done := make(chan struct{})
	go func() {
		s.Questions.Ask(s.Context())
		close(done)
	}()
	<-svc.entered

	assert.True(t, s.Questions.Loading())
	assert.False(t, s.Questions.CanAsk())
	assert.False(t, s.Questions.Ask(s.Context()))

	close(svc.gate)
	<-done
	assert.Equal(t, 1, svc.count("ask"))
	assert.False(t, s.Questions.Loading())
}

// =============================================================================
// SESSION
// =============================================================================

func TestSession_MountLoadsStatusAndHistory(t *testing.T) {
	svc := newFakeService()
	svc.status = remote.ReadinessSnapshot{DocsProcessed: true}
	svc.history = records("A")
	s := newTestSession(t, svc)

	s.Mount()

	assert.True(t, s.Status.DocsProcessed())
	assert.Len(t, s.History.Records(), 1)
	assert.Equal(t, 1, svc.count("status"))
	assert.Equal(t, 1, svc.count("history"))
}

func TestSession_LateResponseAfterCloseIsDropped(t *testing.T) {
	svc := newFakeService()
	svc.ingest = remote.IngestResult{Success: true, Message: "late"}
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestSession(t, svc)

	done := make(chan struct{})
	go func() {
		s.Documents.TriggerProcess(s.Context())
		close(done)
	}()
	<-svc.entered

	s.Close()
	assert.True(t, s.Closed())
	close(svc.gate)
	<-done

	assert.Empty(t, s.Documents.StatusMessage())
	_, ok := s.Status.Snapshot()
	assert.False(t, ok)
	assert.False(t, s.Documents.Processing())
}

func TestSession_RoundTripAskThenHistory(t *testing.T) {
	svc := newFakeService()
	svc.history = records("A", "B")
	svc.answer = remote.AnswerResult{Success: true, Answer: "yes"}
	s := newTestSession(t, svc)
	s.Mount()

	s.Questions.SetQuestion("Can foreigners own 100% of a company?")
	s.Questions.Ask(s.Context())

	all := s.History.Records()
	require.Len(t, all, 3)
	assert.Equal(t, "Can foreigners own 100% of a company?", all[len(all)-1].Question)
	assert.Equal(t, "Can foreigners own 100% of a company?", s.History.Recent()[0].Question)
}
