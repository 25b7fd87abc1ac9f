package interfaces

import (
	"context"

	"github.com/customeros/mailagent/internal/models"
)

type ConversationMemory interface {
	// History returns up to limit most recent messages of a thread, oldest first.
	History(ctx context.Context, threadID string, limit int) ([]*models.ConversationMessage, error)
	Append(ctx context.Context, messages ...*models.ConversationMessage) error
}
