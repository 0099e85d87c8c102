package store

import "time"

type ChatRecord struct {
	ID        string    `json:"-"` // UUID, internal only
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type DocumentChunk struct {
	ID      int64  `json:"id"`
	Source  string `json:"source"` // file name relative to the data folder
	Content string `json:"content"`
}

// IngestSummary describes one completed ingestion run.
type IngestSummary struct {
	Documents int
	Chunks    int
	Sources   []string
}
