// Package agent holds the conversation with the model and dispatches the
// command invocations it asks for to the gate.
package agent

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/atinylittleshell/tars/internal/gate"
	"github.com/atinylittleshell/tars/internal/provider"
)

// DefaultSystemPrompt instructs the model to act through execute_command.
const DefaultSystemPrompt = `You are a Linux assistant that helps the user with terminal commands.
You MUST use the execute_command function to run commands.
Rules:
1. When the user asks to list files or to use ls, run ls with suitable arguments.
2. If the user does not name a path, use the current directory (.).
3. Prefer full paths when the user mentions a well-known directory such as Desktop or Documents.
4. Do not explain commands, just run them.
5. Use ls -la when the user wants details.`

// NotUnderstoodMessage is returned when the model answers with neither text nor a tool call.
const NotUnderstoodMessage = "I did not understand the request."

type Options struct {
	Provider     provider.ModelProvider
	Gate         *gate.Gate
	Logger       *zap.Logger
	SystemPrompt string
}

// Session is one conversation with the model. Sessions are independent of
// each other and are not safe for concurrent use.
type Session struct {
	provider     provider.ModelProvider
	gate         *gate.Gate
	logger       *zap.Logger
	systemPrompt string
	tools        []provider.ChatTool
	conversation []provider.ChatMessage
	callCount    int
}

func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &Session{
		provider:     opts.Provider,
		gate:         opts.Gate,
		logger:       logger,
		systemPrompt: systemPrompt,
		tools:        []provider.ChatTool{ExecuteCommandToolDefinition(opts.Gate.AllowList())},
	}
}

// Send forwards message to the model and returns the text to show the user:
// either the model's reply or the output of the command it chose to run.
// On error the conversation is left as it was before the call.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	messages := make([]provider.ChatMessage, 0, len(s.conversation)+2)
	messages = append(messages, provider.ChatMessage{Role: provider.RoleSystem, Content: s.systemPrompt})
	messages = append(messages, s.conversation...)
	messages = append(messages, provider.ChatMessage{Role: provider.RoleUser, Content: message})

	response, err := s.provider.ChatCompletion(ctx, provider.ChatRequest{
		Messages: messages,
		Tools:    s.tools,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if response.Usage != nil {
		s.logger.Debug("chat completion usage",
			zap.String("provider", s.provider.Name()),
			zap.Int("promptTokens", response.Usage.PromptTokens),
			zap.Int("completionTokens", response.Usage.CompletionTokens),
		)
	}

	userMessage := provider.ChatMessage{Role: provider.RoleUser, Content: message}

	if len(response.ToolCalls) == 0 {
		reply := response.Content
		if strings.TrimSpace(reply) == "" {
			reply = NotUnderstoodMessage
		}
		s.conversation = append(s.conversation,
			userMessage,
			provider.ChatMessage{Role: provider.RoleAssistant, Content: reply},
		)
		return reply, nil
	}

	if len(response.ToolCalls) > 1 {
		s.logger.Warn("model requested several tool calls, running only the first",
			zap.Int("count", len(response.ToolCalls)))
	}

	call := response.ToolCalls[0]
	s.callCount++
	if call.ID == "" {
		call.ID = fmt.Sprintf("call_%d", s.callCount)
	}

	output := s.dispatch(ctx, call)

	s.conversation = append(s.conversation,
		userMessage,
		provider.ChatMessage{
			Role:      provider.RoleAssistant,
			Content:   response.Content,
			ToolCalls: []provider.ChatToolCall{call},
		},
		provider.ChatMessage{
			Role:       provider.RoleTool,
			Name:       call.Name,
			ToolCallID: call.ID,
			Content:    output,
		},
	)
	return output, nil
}

func (s *Session) dispatch(ctx context.Context, call provider.ChatToolCall) string {
	if call.Name != ExecuteCommandToolName {
		s.logger.Warn("model called an unknown function", zap.String("name", call.Name))
		return fmt.Sprintf("Error: unknown function '%s'", call.Name)
	}

	s.logger.Debug("dispatching tool call", zap.String("id", call.ID), zap.Any("args", call.Arguments))
	return ExecuteCommandTool(ctx, s.gate, call.Arguments)
}

// History returns a copy of the conversation so far, without the system prompt.
func (s *Session) History() []provider.ChatMessage {
	return slices.Clone(s.conversation)
}

// Reset clears the conversation history.
func (s *Session) Reset() {
	s.conversation = nil
}
