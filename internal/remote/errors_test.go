package remote

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetail_FallbackChain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server detail wins", &TransportError{Op: "ask", StatusCode: 500, Detail: "Failed to process question.", Err: errors.New("boom")}, "Failed to process question."},
		{"transport description", &TransportError{Op: "ask", Err: errors.New("connection refused")}, "connection refused"},
		{"status only", &TransportError{Op: "ask", StatusCode: 503}, "Request failed with status code 503"},
		{"nothing at all", &TransportError{Op: "ask"}, GenericFailure},
		{"application message", &ApplicationFailure{Op: "process", Message: "No documents found"}, "No documents found"},
		{"application blank", &ApplicationFailure{Op: "process", Message: "  "}, GenericFailure},
		{"wrapped transport", fmt.Errorf("outer: %w", &TransportError{Op: "x", Detail: "inner detail"}), "inner detail"},
		{"plain error", errors.New("something odd"), "something odd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detail(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "✅ Loaded 42 docs", SuccessMessage("Loaded 42 docs"))
	assert.Equal(t, "❌ Error: "+GenericFailure, FailureMessage(&TransportError{Op: "x"}))
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := &TransportError{Op: "fetch status", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "fetch status: dial tcp: refused", err.Error())
}
