package events

import (
	"context"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/logger"
)

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct {
	logger logger.Logger
}

func NewNoopPublisher(logger logger.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (n *NoopPublisher) PublishEmailSent(_ context.Context, event dto.EmailSent) error {
	n.logger.Debugf("Event publishing disabled, dropping EmailSent for %s", event.MessageID)
	return nil
}

func (n *NoopPublisher) PublishCommandCompleted(_ context.Context, event dto.CommandCompleted) error {
	n.logger.Debugf("Event publishing disabled, dropping CommandCompleted for %q", event.Query)
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
