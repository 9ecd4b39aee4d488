package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

func TestFallbackUsesPrimaryFirst(t *testing.T) {
	primary := &stubLLM{resp: LLMResponse{Text: "primary"}}
	fallback := &stubLLM{resp: LLMResponse{Text: "fallback"}}
	client := NewFallbackLLMClient(primary, fallback, logging.New("error"))

	resp, err := client.Complete(context.Background(), LLMRequest{})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Zero(t, fallback.calls)
}

func TestFallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubLLM{err: errors.New("down")}
	fallback := &stubLLM{resp: LLMResponse{Text: "fallback"}}
	client := NewFallbackLLMClient(primary, fallback, logging.New("error"))

	resp, err := client.Complete(context.Background(), LLMRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
}

func TestFallbackBothFail(t *testing.T) {
	primary := &stubLLM{err: errors.New("primary down")}
	fallback := &stubLLM{err: errors.New("fallback down")}
	client := NewFallbackLLMClient(primary, fallback, logging.New("error"))

	_, err := client.Complete(context.Background(), LLMRequest{})
	assert.ErrorContains(t, err, "fallback down")
}

func TestFallbackWithoutSecondary(t *testing.T) {
	primary := &stubLLM{err: errors.New("down")}
	client := NewFallbackLLMClient(primary, nil, logging.New("error"))

	_, err := client.Complete(context.Background(), LLMRequest{})
	assert.ErrorContains(t, err, "down")
}
