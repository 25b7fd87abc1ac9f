package tools

import (
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/enum"
)

func stringProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Definitions describes every registered tool as a JSON schema function.
func (r *Registry) Definitions() []dto.ToolDefinition {
	return []dto.ToolDefinition{
		{
			Name:        enum.ToolFetchEmails.String(),
			Description: "Fetch all emails received in the inbox today, with sender, subject, body and date.",
			Parameters:  objectSchema(map[string]any{}),
		},
		{
			Name:        enum.ToolSearchEmails.String(),
			Description: "Search today's emails for a keyword in the subject or body.",
			Parameters: objectSchema(map[string]any{
				"keyword": stringProperty("Keyword to look for, case-insensitive"),
			}, "keyword"),
		},
		{
			Name:        enum.ToolComposeEmail.String(),
			Description: "Turn a casual message into a formal email with a subject line. Does not send it.",
			Parameters: objectSchema(map[string]any{
				"instruction": stringProperty("What the email should say"),
			}, "instruction"),
		},
		{
			Name: enum.ToolSendEmail.String(),
			Description: "Send an email. Give subject and emailBody, or a message to be composed into a formal email first. " +
				"Ask the user for the recipient address if it is not known.",
			Parameters: objectSchema(map[string]any{
				"to":        stringProperty("Recipient email address"),
				"subject":   stringProperty("Subject line"),
				"emailBody": stringProperty("Plain text body"),
				"message":   stringProperty("Casual message to compose into an email when subject and emailBody are not given"),
			}, "to"),
		},
	}
}
