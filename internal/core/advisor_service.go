package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ethiostartup.com/advisor/internal/store"
)

// MemoryWindow is how many recent exchanges are replayed to the answerer.
const MemoryWindow = 5

var (
	ErrNotProcessed  = errors.New("Please process documents first.")
	ErrEmptyQuestion = errors.New("Question must not be empty.")
)

// Pipeline mirrors the readiness flags reported by the status endpoint.
type Pipeline struct {
	DocsProcessed    bool `json:"docs_processed"`
	VectorStoreReady bool `json:"vector_store_ready"`
	RetrieverReady   bool `json:"retriever_ready"`
	RAGChainReady    bool `json:"rag_chain_ready"`
	MemoryReady      bool `json:"memory_ready"`
}

type Exchange struct {
	Question string
	Answer   string
}

type ProcessResult struct {
	Message       string
	DocumentCount int
}

type AdvisorService struct {
	dbStore      *store.SQLiteStore
	answerer     Answerer
	dataDir      string
	historyLimit int
	logger       *zap.Logger

	// ingestMu serializes process and reprocess runs.
	ingestMu sync.Mutex

	mu       sync.RWMutex
	pipeline Pipeline
	memory   []Exchange
	sources  []string
}

func NewAdvisorService(db *store.SQLiteStore, answerer Answerer, dataDir string, historyLimit int, logger *zap.Logger) *AdvisorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &AdvisorService{
		dbStore:      db,
		answerer:     answerer,
		dataDir:      dataDir,
		historyLimit: historyLimit,
		logger:       logger.Named("advisor"),
	}
}

func (s *AdvisorService) Status() Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline
}

// ProcessDocuments ingests the data folder and, on success, marks every
// pipeline stage ready with a fresh conversation memory. A failed run leaves
// the previous state as it was.
func (s *AdvisorService) ProcessDocuments(ctx context.Context) (*ProcessResult, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	return s.process(ctx)
}

// ReprocessDocuments resets every stage before ingesting again, so a failed
// reprocess leaves the advisor not ready.
func (s *AdvisorService) ReprocessDocuments(ctx context.Context) (*ProcessResult, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	s.mu.Lock()
	s.pipeline = Pipeline{}
	s.memory = nil
	s.sources = nil
	s.mu.Unlock()
	s.logger.Info("pipeline reset for reprocessing")

	return s.process(ctx)
}

func (s *AdvisorService) process(ctx context.Context) (*ProcessResult, error) {
	summary, err := s.dbStore.IngestDataFromDir(ctx, s.dataDir)
	if err != nil {
		s.logger.Error("document processing failed", zap.String("data_dir", s.dataDir), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.pipeline = Pipeline{
		DocsProcessed:    true,
		VectorStoreReady: true,
		RetrieverReady:   true,
		RAGChainReady:    true,
		MemoryReady:      true,
	}
	s.memory = []Exchange{}
	s.sources = append([]string(nil), summary.Sources...)
	s.mu.Unlock()

	s.logger.Info("documents processed",
		zap.Int("documents", summary.Documents),
		zap.Int("chunks", summary.Chunks),
	)
	return &ProcessResult{Message: "Documents processed successfully!", DocumentCount: summary.Chunks}, nil
}

// AskQuestion answers with the conversation memory as context, then records
// the exchange in the capped chat history and the memory window.
func (s *AdvisorService) AskQuestion(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	s.mu.RLock()
	ready := s.pipeline.DocsProcessed
	memory := append([]Exchange(nil), s.memory...)
	sources := append([]string(nil), s.sources...)
	s.mu.RUnlock()
	if !ready {
		return "", ErrNotProcessed
	}

	answer, err := s.answerer.Answer(ctx, question, memory, sources)
	if err != nil {
		return "", fmt.Errorf("failed to answer question: %w", err)
	}

	if _, err := s.dbStore.AppendChatRecord(ctx, question, answer); err != nil {
		return "", fmt.Errorf("failed to store chat record: %w", err)
	}
	if err := s.dbStore.TrimChatHistory(ctx, s.historyLimit); err != nil {
		s.logger.Warn("failed to trim chat history", zap.Error(err))
	}

	s.mu.Lock()
	if s.pipeline.MemoryReady {
		s.memory = append(s.memory, Exchange{Question: question, Answer: answer})
		if len(s.memory) > MemoryWindow {
			s.memory = s.memory[len(s.memory)-MemoryWindow:]
		}
	}
	s.mu.Unlock()

	return answer, nil
}

func (s *AdvisorService) Memory() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Exchange(nil), s.memory...)
}

func (s *AdvisorService) ChatHistory(ctx context.Context) ([]store.ChatRecord, error) {
	return s.dbStore.GetChatHistory(ctx)
}

func (s *AdvisorService) ClearChatHistory(ctx context.Context) error {
	return s.dbStore.ClearChatHistory(ctx)
}
