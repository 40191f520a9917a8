package llm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"claimflow/internal/llm"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	err := llm.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "gemini rate limited")
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, llm.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, llm.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 42, llm.ParseRetryAfterHeader("42"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false, false},
		{"rate limited", llm.NewRateLimitError("claude", errors.New("429"), 1), false, false},
		{"service unavailable", &llm.StatusError{Provider: "claude", StatusCode: 503}, true, true},
		{"bad request", &llm.StatusError{Provider: "claude", StatusCode: 400}, false, false},
		{"unknown", errors.New("weird"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := llm.ClassifyError(tt.err)
			assert.Equal(t, tt.retryable, class.Retryable)
			assert.Equal(t, tt.recordFailure, class.RecordFailure)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", llm.Truncate("abc", 5))
	assert.Equal(t, "ab...", llm.Truncate("abcdef", 2))
}
