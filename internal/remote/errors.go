package remote

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SuccessMarker = "✅ "
	FailureMarker = "❌ "

	// GenericFailure is shown when a failed call carries no usable detail.
	GenericFailure = "Request failed. Please try again."
)

// ErrEmptyQuestion is returned before any request is made when the question
// is empty after trimming.
var ErrEmptyQuestion = errors.New("question is empty")

// TransportError covers network failures and non-2xx responses. Detail holds
// the server-supplied "detail" field when the error body had one.
type TransportError struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: request failed with status code %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport failure"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ApplicationFailure is a well-formed response that reported success=false.
type ApplicationFailure struct {
	Op      string
	Message string
}

func (e *ApplicationFailure) Error() string {
	if e.Message == "" {
		return e.Op + ": service reported failure"
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Detail derives the human-readable reason for a failed call: the server's
// detail first, then the transport description, then GenericFailure.
func Detail(err error) string {
	if err == nil {
		return ""
	}

	var te *TransportError
	if errors.As(err, &te) {
		if d := strings.TrimSpace(te.Detail); d != "" {
			return d
		}
		if te.Err != nil {
			if d := strings.TrimSpace(te.Err.Error()); d != "" {
				return d
			}
		}
		if te.StatusCode != 0 {
			return fmt.Sprintf("Request failed with status code %d", te.StatusCode)
		}
		return GenericFailure
	}

	var af *ApplicationFailure
	if errors.As(err, &af) {
		if m := strings.TrimSpace(af.Message); m != "" {
			return m
		}
		return GenericFailure
	}

	if d := strings.TrimSpace(err.Error()); d != "" {
		return d
	}
	return GenericFailure
}

func SuccessMessage(message string) string {
	return SuccessMarker + message
}

func FailureMessage(err error) string {
	return FailureMarker + "Error: " + Detail(err)
}
