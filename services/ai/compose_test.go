package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
)

type scriptedInference struct {
	content  string
	err      error
	requests []dto.CompletionRequest
}

func (s *scriptedInference) Complete(_ context.Context, request dto.CompletionRequest) (*dto.CompletionResponse, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CompletionResponse{Content: s.content}, nil
}

func TestComposeEmail_ParsesJSONReply(t *testing.T) {
	inference := &scriptedInference{content: `{"subject":"Reminder: Meeting Tomorrow","emailBody":"Dear Sam,\n\nThis is a reminder about our meeting tomorrow.\n\nBest regards"}`}
	svc := NewComposeService(logger.NewTestLogger(), inference)

	composed, err := svc.ComposeEmail(context.Background(), "remind sam about meeting tomorrow")
	require.NoError(t, err)
	assert.NotEmpty(t, composed.Subject)
	assert.NotEmpty(t, composed.EmailBody)
	assert.Equal(t, "Reminder: Meeting Tomorrow", composed.Subject)

	require.Len(t, inference.requests, 1)
	request := inference.requests[0]
	assert.True(t, request.JSON)
	require.Len(t, request.Messages, 2)
	assert.Equal(t, enum.RoleSystem, request.Messages[0].Role)
	assert.Equal(t, ComposeSystemPrompt, request.Messages[0].Content)
	assert.Equal(t, enum.RoleUser, request.Messages[1].Role)
	assert.Equal(t, "remind sam about meeting tomorrow", request.Messages[1].Content)
}

func TestComposeEmail_ToleratesCodeFence(t *testing.T) {
	inference := &scriptedInference{content: "```json\n{\"subject\":\"Hi\",\"emailBody\":\"Hello there\"}\n```"}
	svc := NewComposeService(logger.NewTestLogger(), inference)

	composed, err := svc.ComposeEmail(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, &dto.ComposedEmail{Subject: "Hi", EmailBody: "Hello there"}, composed)
}

func TestComposeEmail_NonJSONIsParseError(t *testing.T) {
	svc := NewComposeService(logger.NewTestLogger(), &scriptedInference{content: "Sure! Here is your email: ..."})

	_, err := svc.ComposeEmail(context.Background(), "say hi")
	assert.ErrorIs(t, err, mailerrors.ErrParse)
}

func TestComposeEmail_MissingFieldIsParseError(t *testing.T) {
	svc := NewComposeService(logger.NewTestLogger(), &scriptedInference{content: `{"subject":"Hi","emailBody":"  "}`})

	_, err := svc.ComposeEmail(context.Background(), "say hi")
	assert.ErrorIs(t, err, mailerrors.ErrParse)
}

func TestComposeEmail_EmptyInstructionIsValidationError(t *testing.T) {
	inference := &scriptedInference{}
	svc := NewComposeService(logger.NewTestLogger(), inference)

	_, err := svc.ComposeEmail(context.Background(), "   ")
	assert.ErrorIs(t, err, mailerrors.ErrValidation)
	assert.Empty(t, inference.requests)
}

func TestComposeEmail_PassesThroughInferenceErrors(t *testing.T) {
	svc := NewComposeService(logger.NewTestLogger(), &scriptedInference{err: mailerrors.Connection("inference.complete", assert.AnError)})

	_, err := svc.ComposeEmail(context.Background(), "say hi")
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
}
