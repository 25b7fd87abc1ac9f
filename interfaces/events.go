package interfaces

import (
	"context"

	"github.com/customeros/mailagent/dto"
)

type EventPublisher interface {
	PublishEmailSent(ctx context.Context, event dto.EmailSent) error
	PublishCommandCompleted(ctx context.Context, event dto.CommandCompleted) error
	Close() error
}
