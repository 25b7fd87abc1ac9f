package interfaces

import (
	"context"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/enum"
)

type ToolRegistry interface {
	Definitions() []dto.ToolDefinition
	Invoke(ctx context.Context, id enum.ToolID, args map[string]string) (any, error)
}
