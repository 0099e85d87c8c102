package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

// maxChunkChars bounds how many characters of adjacent paragraphs are merged
// into one chunk. A single longer paragraph is kept whole.
const maxChunkChars = 1000

var (
	ErrDataDirNotFound = errors.New("Data folder not found")
	ErrNoDocuments     = errors.New("No documents found in data folder")
)

var documentExtensions = map[string]bool{".md": true, ".txt": true}

type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(dataSourceName string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: logger.Named("store")}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chat_history (
        id TEXT PRIMARY KEY, -- UUID
        question TEXT NOT NULL,
        answer TEXT NOT NULL,
        timestamp DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS document_chunks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        content TEXT NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Chat history methods

func (s *SQLiteStore) AppendChatRecord(ctx context.Context, question, answer string) (*ChatRecord, error) {
	rec := &ChatRecord{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Timestamp: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_history (id, question, answer, timestamp) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Question, rec.Answer, rec.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat record: %w", err)
	}
	return rec, nil
}

// TrimChatHistory drops the oldest records until at most keep remain.
func (s *SQLiteStore) TrimChatHistory(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
        DELETE FROM chat_history
        WHERE rowid NOT IN (
            SELECT rowid FROM chat_history ORDER BY rowid DESC LIMIT ?
        )`, keep)
	if err != nil {
		return fmt.Errorf("failed to trim chat history: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("trimmed chat history", zap.Int64("removed", n), zap.Int("kept", keep))
	}
	return nil
}

// GetChatHistory returns every record, oldest first.
func (s *SQLiteStore) GetChatHistory(ctx context.Context) ([]ChatRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, question, answer, timestamp FROM chat_history ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	records := []ChatRecord{}
	for rows.Next() {
		var rec ChatRecord
		if err := rows.Scan(&rec.ID, &rec.Question, &rec.Answer, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) ClearChatHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_history"); err != nil {
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}

// Document chunk methods

func (s *SQLiteStore) CountDocumentChunks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count document chunks: %w", err)
	}
	return n, nil
}

// ListSources returns the distinct source files of the stored chunks, sorted.
func (s *SQLiteStore) ListSources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT source FROM document_chunks ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// IngestDataFromDir reads every .md and .txt file directly under dir, splits
// them into paragraph chunks, and replaces the stored chunks in one
// transaction. Nothing is replaced when the folder is missing or holds no
// documents.
func (s *SQLiteStore) IngestDataFromDir(ctx context.Context, dir string) (*IngestSummary, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, ErrDataDirNotFound
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data folder %s: %w", dir, err)
	}

	type document struct {
		source string
		chunks []string
	}
	var docs []document
	for _, entry := range entries {
		if entry.IsDir() || !documentExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		contentBytes, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", entry.Name(), err)
		}
		chunks := SplitIntoChunks(string(contentBytes), maxChunkChars)
		if len(chunks) == 0 {
			s.logger.Warn("skipping empty document", zap.String("source", entry.Name()))
			continue
		}
		docs = append(docs, document{source: entry.Name(), chunks: chunks})
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].source < docs[j].source })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingestion: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_chunks"); err != nil {
		return nil, fmt.Errorf("failed to clear document chunks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO document_chunks (source, content) VALUES (?, ?)")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare document chunk insert: %w", err)
	}
	defer stmt.Close()

	summary := &IngestSummary{}
	for _, doc := range docs {
		for _, chunk := range doc.chunks {
			if _, err := stmt.ExecContext(ctx, doc.source, chunk); err != nil {
				return nil, fmt.Errorf("failed to store chunk of %s: %w", doc.source, err)
			}
			summary.Chunks++
		}
		summary.Documents++
		summary.Sources = append(summary.Sources, doc.source)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion: %w", err)
	}
	s.logger.Info("ingested documents",
		zap.Int("documents", summary.Documents),
		zap.Int("chunks", summary.Chunks),
	)
	return summary, nil
}

// SplitIntoChunks breaks text on blank lines and packs adjacent paragraphs
// together while they fit in limit characters.
func SplitIntoChunks(text string, limit int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return chunks
}
