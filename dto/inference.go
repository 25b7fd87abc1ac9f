package dto

import "github.com/customeros/mailagent/internal/enum"

type ChatMessage struct {
	Role       enum.MessageRole `json:"role"`
	Content    string           `json:"content"`
	ToolCallID string           `json:"toolCallId,omitempty"`
	ToolCalls  []ToolCall       `json:"toolCalls,omitempty"`
}

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition describes a callable tool; Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type CompletionRequest struct {
	Messages []ChatMessage    `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
	// JSON asks the endpoint for a JSON object response
	JSON bool `json:"json"`
}

type CompletionResponse struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}
