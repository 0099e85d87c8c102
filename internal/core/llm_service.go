package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	defaultChatModelName = "gemini-1.5-flash-latest"

	chatSystemInstruction = "You are an expert consultant on Ethiopian business law helping startup founders. " +
		"Answer questions about business registration, licensing, foreign investment, tax and compliance " +
		"using the Ethiopian Commercial Code, the Investment Proclamation, the Trade Registration Proclamation " +
		"and the tax proclamations. Give practical, step-by-step guidance and cite the relevant proclamation " +
		"or article when you can. If you are not sure, say so and recommend consulting a licensed lawyer. " +
		"Format answers in Markdown."
)

// Answerer turns a question, the recent conversation and the loaded source
// names into an answer.
type Answerer interface {
	Answer(ctx context.Context, question string, memory []Exchange, sources []string) (string, error)
	Close() error
}

type LLMService struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewLLMService(ctx context.Context, apiKey string, logger *zap.Logger) (*LLMService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{
		client: client,
		model:  defaultChatModelName,
		logger: logger.Named("llm"),
	}, nil
}

func (s *LLMService) Close() error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close GenAI client: %w", err)
	}
	s.logger.Info("GenAI client closed")
	return nil
}

func (s *LLMService) Answer(ctx context.Context, question string, memory []Exchange, sources []string) (string, error) {
	return s.GetChatCompletion(ctx, buildConversation(question, memory, sources))
}

func (s *LLMService) GetChatCompletion(ctx context.Context, promptHistory []*genai.Content) (string, error) {
	if len(promptHistory) == 0 {
		return "", fmt.Errorf("prompt history is empty for chat completion")
	}
	lastUserMessage := promptHistory[len(promptHistory)-1]
	if lastUserMessage.Role != roleUser {
		return "", fmt.Errorf("last message in history is not from %q, cannot proceed with chat completion", roleUser)
	}

	model := s.client.GenerativeModel(s.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(chatSystemInstruction)},
	}

	chatSession := model.StartChat()
	chatSession.History = promptHistory[:len(promptHistory)-1]

	resp, err := chatSession.SendMessage(ctx, lastUserMessage.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		s.logger.Warn("gemini response had no candidates")
		return "I'm sorry, I couldn't generate a response at this time. Please try again.", nil
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			s.logger.Debug("skipping non-text response part", zap.String("type", fmt.Sprintf("%T", part)))
		}
	}

	if responseText.Len() == 0 {
		s.logger.Warn("gemini response was empty after processing")
		return "I received an empty or non-text response, please try rephrasing your question.", nil
	}
	return responseText.String(), nil
}

// OfflineAnswerer is used when no Gemini key is configured. It never calls
// out and says so in its answer.
type OfflineAnswerer struct{}

func (OfflineAnswerer) Answer(_ context.Context, question string, memory []Exchange, sources []string) (string, error) {
	var b strings.Builder
	b.WriteString("**The advisor is running without a language model.**\n\n")
	fmt.Fprintf(&b, "Your question: _%s_\n\n", question)
	if len(sources) > 0 {
		b.WriteString("Loaded legal sources:\n")
		for _, src := range sources {
			fmt.Fprintf(&b, "- %s\n", src)
		}
		b.WriteString("\n")
	}
	if len(memory) > 0 {
		fmt.Fprintf(&b, "I remember %d earlier question(s) in this conversation.\n\n", len(memory))
	}
	b.WriteString("Set `GEMINI_API_KEY` to get answers grounded in Ethiopian business law.")
	return b.String(), nil
}

func (OfflineAnswerer) Close() error { return nil }
