package dto

type AgentRequest struct {
	ThreadID string `json:"threadId"`
	Message  string `json:"message"`
}

type AgentReply struct {
	ThreadID  string           `json:"threadId"`
	Reply     string           `json:"reply"`
	ToolCalls []ToolInvocation `json:"toolCalls"`
}

type ToolInvocation struct {
	Tool      string            `json:"tool"`
	Arguments map[string]string `json:"arguments"`
	Error     string            `json:"error,omitempty"`
}
