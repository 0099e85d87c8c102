package remote

// ReadinessSnapshot is the advisor service's view of its ingestion pipeline.
// The flags are staged but the client only ever gates on DocsProcessed.
type ReadinessSnapshot struct {
	DocsProcessed    bool `json:"docs_processed"`
	VectorStoreReady bool `json:"vector_store_ready"`
	RetrieverReady   bool `json:"retriever_ready"`
	RAGChainReady    bool `json:"rag_chain_ready"`
	MemoryReady      bool `json:"memory_ready"`
}

type ChatRecord struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type IngestResult struct {
	Message       string `json:"message"`
	Success       bool   `json:"success"`
	DocumentCount *int   `json:"document_count,omitempty"`
}

type AnswerResult struct {
	Answer  string `json:"answer"`
	Success bool   `json:"success"`
}

type historyEnvelope struct {
	ChatHistory []ChatRecord `json:"chat_history"`
}

type questionRequest struct {
	Question string `json:"question"`
}

// errorBody is the FastAPI-style error payload: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}
