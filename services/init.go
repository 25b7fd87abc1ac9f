package services

import (
	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/repository"
	"github.com/customeros/mailagent/services/agent"
	"github.com/customeros/mailagent/services/ai"
	"github.com/customeros/mailagent/services/events"
	"github.com/customeros/mailagent/services/imap"
	"github.com/customeros/mailagent/services/memory"
	"github.com/customeros/mailagent/services/search"
	"github.com/customeros/mailagent/services/smtp"
	"github.com/customeros/mailagent/services/tools"
	"github.com/customeros/mailagent/services/workflow"
)

type Services struct {
	EventsService     *events.EventsService
	InferenceService  interfaces.InferenceService
	IMAPService       interfaces.MailRetrievalService
	SearchService     interfaces.MailSearchService
	ComposeService    interfaces.ComposeService
	SMTPService       interfaces.MailDispatchService
	ToolRegistry      interfaces.ToolRegistry
	CommandDispatcher interfaces.CommandDispatcher
	Agent             interfaces.Agent
}

// InitServices wires every service. Conversation memory lives in postgres when
// repos is non-nil, in process otherwise.
func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	publisherConfig := &events.PublisherConfig{
		MessageTTL:     events.DefaultMessageTTL,
		PublishTimeout: events.DefaultPublishTimeout,
	}

	eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
	if err != nil {
		return nil, err
	}

	var conversationMemory interfaces.ConversationMemory
	if repos != nil {
		conversationMemory = repos.ConversationMessageRepository
	} else {
		conversationMemory = memory.NewInMemoryStore()
	}

	inferenceService := ai.NewInferenceService(cfg.InferenceConfig, log)
	imapService := imap.NewIMAPService(cfg.MailboxConfig, log)
	searchService := search.NewSearchService(cfg.SearchConfig, log, imapService)
	composeService := ai.NewComposeService(log, inferenceService)
	smtpService := smtp.NewSMTPService(cfg.MailboxConfig, log, eventsService.Publisher)
	toolRegistry := tools.NewRegistry(log, imapService, searchService, composeService, smtpService)

	services := Services{
		EventsService:     eventsService,
		InferenceService:  inferenceService,
		IMAPService:       imapService,
		SearchService:     searchService,
		ComposeService:    composeService,
		SMTPService:       smtpService,
		ToolRegistry:      toolRegistry,
		CommandDispatcher: workflow.NewDispatcher(log, inferenceService, toolRegistry, eventsService.Publisher),
		Agent:             agent.NewAgent(cfg.AgentConfig, log, inferenceService, toolRegistry, conversationMemory),
	}

	return &services, nil
}
