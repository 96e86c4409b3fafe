package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const GeminiProviderName = "gemini"

// contentGenerator is the slice of the genai client the provider needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider implements the ModelProvider interface for the Gemini API
type GeminiProvider struct {
	models contentGenerator
	config ModelConfig
}

// NewGeminiProvider creates a Gemini provider backed by the Gemini Developer API.
func NewGeminiProvider(ctx context.Context, cfg ModelConfig) (*GeminiProvider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{models: client.Models, config: cfg}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return GeminiProviderName
}

// ChatCompletion sends the conversation to Gemini's generateContent endpoint.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	system, contents := toGeminiContents(request.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini request has no user content")
	}

	config := p.generateConfig()
	config.SystemInstruction = system

	if len(request.Tools) > 0 {
		declarations := make([]*genai.FunctionDeclaration, len(request.Tools))
		for i, tool := range request.Tools {
			declarations[i] = &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  toGeminiSchema(tool.Parameters),
			}
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}

	resp, err := p.models.GenerateContent(ctx, p.config.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return fromGeminiResponse(resp)
}

func (p *GeminiProvider) generateConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if p.config.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(p.config.Temperature))
	}
	if p.config.TopP > 0 {
		config.TopP = genai.Ptr(float32(p.config.TopP))
	}
	if p.config.TopK > 0 {
		config.TopK = genai.Ptr(float32(p.config.TopK))
	}
	if p.config.MaxTokens > 0 {
		config.MaxOutputTokens = int32(p.config.MaxTokens)
	}
	return config
}

// toGeminiContents splits system messages into a system instruction and maps
// the rest of the conversation onto Gemini's user/model turns.
func toGeminiContents(messages []ChatMessage) (*genai.Content, []*genai.Content) {
	var systemParts []*genai.Part
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, &genai.Part{Text: msg.Content})
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Arguments,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Parts: parts, Role: genai.RoleModel})
			}
		case RoleTool:
			contents = append(contents, &genai.Content{
				Parts: []*genai.Part{
					{
						FunctionResponse: &genai.FunctionResponse{
							ID:   msg.ToolCallID,
							Name: msg.Name,
							Response: map[string]any{
								"output": msg.Content,
							},
						},
					},
				},
				Role: genai.RoleUser,
			})
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, contents
}

func fromGeminiResponse(resp *genai.GenerateContentResponse) (*ChatResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	response := &ChatResponse{
		FinishReason: string(resp.Candidates[0].FinishReason),
	}

	if candidate := resp.Candidates[0]; candidate.Content != nil {
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.FunctionCall != nil {
				response.ToolCalls = append(response.ToolCalls, ChatToolCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				})
				continue
			}
			if !part.Thought {
				text.WriteString(part.Text)
			}
		}
		response.Content = text.String()
	}

	if usage := resp.UsageMetadata; usage != nil {
		response.Usage = &ChatUsage{
			PromptTokens:     int(usage.PromptTokenCount),
			CompletionTokens: int(usage.CandidatesTokenCount),
			TotalTokens:      int(usage.TotalTokenCount),
		}
	}

	return response, nil
}

// toGeminiSchema converts a JSON schema fragment into a genai.Schema. Only the
// keywords a function declaration needs are carried over.
func toGeminiSchema(schema map[string]interface{}) *genai.Schema {
	if len(schema) == 0 {
		return nil
	}

	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	out.Enum = stringList(schema["enum"])
	out.Required = stringList(schema["required"])

	if items, ok := schema["items"].(map[string]interface{}); ok {
		out.Items = toGeminiSchema(items)
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propSchema, ok := prop.(map[string]interface{}); ok {
				out.Properties[name] = toGeminiSchema(propSchema)
			}
		}
	}
	return out
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
