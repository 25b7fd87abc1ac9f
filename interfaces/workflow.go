package interfaces

import (
	"context"

	"github.com/customeros/mailagent/dto"
)

type CommandDispatcher interface {
	Run(ctx context.Context, query string) (*dto.CommandResult, error)
}

type Agent interface {
	Chat(ctx context.Context, threadID, message string) (*dto.AgentReply, error)
}
