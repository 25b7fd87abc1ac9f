package dto

import "github.com/customeros/mailagent/internal/enum"

// Classification is the outcome of intent detection for one free-text query.
type Classification struct {
	Intent    enum.Intent       `json:"intent"`
	Arguments map[string]string `json:"arguments"`
}

type CommandResult struct {
	Query     string            `json:"query"`
	Intent    enum.Intent       `json:"intent"`
	Arguments map[string]string `json:"arguments"`
	Tool      enum.ToolID       `json:"tool"`
	Output    any               `json:"output"`
}
