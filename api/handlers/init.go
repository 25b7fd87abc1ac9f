package handlers

import (
	"github.com/customeros/mailagent/services"
)

type APIHandlers struct {
	Emails   *EmailsHandler
	Commands *CommandsHandler
	Agent    *AgentHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		Emails:   NewEmailsHandler(s.IMAPService, s.SearchService, s.ComposeService, s.SMTPService),
		Commands: NewCommandsHandler(s.CommandDispatcher),
		Agent:    NewAgentHandler(s.Agent),
	}
}
