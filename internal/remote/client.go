// Package remote is a thin typed client for the advisor service's HTTP API.
// Every method is a single round trip: no retries, no caching.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	pathStatus      = "/api/status"
	pathHistory     = "/api/chat-history"
	pathProcess     = "/api/process-documents"
	pathReprocess   = "/api/reprocess-documents"
	pathAskQuestion = "/api/ask-question"

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("remote")
	return c
}

func (c *Client) FetchStatus(ctx context.Context) (ReadinessSnapshot, error) {
	var snap ReadinessSnapshot
	err := c.do(ctx, "fetch status", http.MethodGet, pathStatus, nil, &snap)
	return snap, err
}

func (c *Client) FetchHistory(ctx context.Context) ([]ChatRecord, error) {
	var env historyEnvelope
	if err := c.do(ctx, "fetch history", http.MethodGet, pathHistory, nil, &env); err != nil {
		return nil, err
	}
	if env.ChatHistory == nil {
		return []ChatRecord{}, nil
	}
	return env.ChatHistory, nil
}

func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, "clear history", http.MethodDelete, pathHistory, nil, nil)
}

func (c *Client) ProcessDocuments(ctx context.Context) (IngestResult, error) {
	var res IngestResult
	err := c.do(ctx, "process documents", http.MethodPost, pathProcess, nil, &res)
	return res, err
}

func (c *Client) ReprocessDocuments(ctx context.Context) (IngestResult, error) {
	var res IngestResult
	err := c.do(ctx, "reprocess documents", http.MethodPost, pathReprocess, nil, &res)
	return res, err
}

// AskQuestion sends the trimmed question. Whitespace-only input returns
// ErrEmptyQuestion without touching the network.
func (c *Client) AskQuestion(ctx context.Context, question string) (AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return AnswerResult{}, ErrEmptyQuestion
	}
	var res AnswerResult
	err := c.do(ctx, "ask question", http.MethodPost, pathAskQuestion, questionRequest{Question: question}, &res)
	return res, err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		te := &TransportError{Op: op, StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			te.Detail = eb.Detail
		}
		return te
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
