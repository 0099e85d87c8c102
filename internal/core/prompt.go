package core

import (
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// buildConversation replays the memory window as alternating user and model
// turns and ends with the current question as the final user turn.
func buildConversation(question string, memory []Exchange, sources []string) []*genai.Content {
	history := make([]*genai.Content, 0, 2*len(memory)+1)
	for _, ex := range memory {
		history = append(history,
			&genai.Content{Role: roleUser, Parts: []genai.Part{genai.Text(ex.Question)}},
			&genai.Content{Role: roleModel, Parts: []genai.Part{genai.Text(ex.Answer)}},
		)
	}

	var finalUserContent string
	if len(sources) > 0 {
		finalUserContent = fmt.Sprintf("Based on our previous conversation and the loaded legal sources (%s), please answer my question: %s",
			strings.Join(sources, ", "), question)
	} else {
		finalUserContent = fmt.Sprintf("Based on our previous conversation (if any), please answer: %s", question)
	}

	return append(history, &genai.Content{
		Role:  roleUser,
		Parts: []genai.Part{genai.Text(finalUserContent)},
	})
}
