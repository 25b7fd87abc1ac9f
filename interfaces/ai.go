package interfaces

import (
	"context"

	"github.com/customeros/mailagent/dto"
)

// InferenceService is a single-shot, non-streaming chat completion call.
type InferenceService interface {
	Complete(ctx context.Context, request dto.CompletionRequest) (*dto.CompletionResponse, error)
}
