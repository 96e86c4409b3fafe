// Package provider talks to the language models that turn user text into
// command invocations.
package provider

import (
	"context"
	"fmt"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ModelProvider defines the interface for LLM model providers
type ModelProvider interface {
	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string

	// ChatCompletion sends a chat completion request and blocks until the
	// model answers or ctx is done.
	ChatCompletion(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	// Messages in the conversation, oldest first
	Messages []ChatMessage

	// Tools available to the model
	Tools []ChatTool
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string
	Name    string // Optional: name of the tool for tool messages

	// ToolCallID links a tool result message to the call it answers
	ToolCallID string

	// ToolCalls holds the calls an assistant message requested
	ToolCalls []ChatToolCall
}

// ChatTool represents a tool that can be called by the model
type ChatTool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema of the arguments object
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	// The generated text
	Content string

	// Finish reason ("stop", "length", "tool_calls", etc.)
	FinishReason string

	// Token usage information
	Usage *ChatUsage

	// Tool calls requested by the model
	ToolCalls []ChatToolCall
}

// ChatUsage represents token usage information
type ChatUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatToolCall represents a tool call requested by the model
type ChatToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// ModelConfig selects and tunes a model. Zero sampling values leave the
// provider's own default in place.
type ModelConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

// New returns the provider named by cfg.Provider.
func New(ctx context.Context, cfg ModelConfig) (ModelProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%s provider requires a model", cfg.Provider)
	}

	switch cfg.Provider {
	case GeminiProviderName:
		return NewGeminiProvider(ctx, cfg)
	case OpenAIProviderName:
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
