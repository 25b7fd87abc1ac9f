package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
)

// scriptedInference answers each call with the next queued reply.
type scriptedInference struct {
	replies  []string
	requests []dto.CompletionRequest
}

func (s *scriptedInference) Complete(_ context.Context, request dto.CompletionRequest) (*dto.CompletionResponse, error) {
	s.requests = append(s.requests, request)
	if len(s.replies) == 0 {
		return nil, mailerrors.Connection("inference.complete", assert.AnError)
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return &dto.CompletionResponse{Content: reply}, nil
}

type invocation struct {
	id   enum.ToolID
	args map[string]string
}

type fakeRegistry struct {
	output      any
	err         error
	invocations []invocation
}

func (f *fakeRegistry) Definitions() []dto.ToolDefinition {
	return nil
}

func (f *fakeRegistry) Invoke(_ context.Context, id enum.ToolID, args map[string]string) (any, error) {
	f.invocations = append(f.invocations, invocation{id: id, args: args})
	return f.output, f.err
}

type recordingPublisher struct {
	mu        sync.Mutex
	completed []dto.CommandCompleted
}

func (r *recordingPublisher) PublishEmailSent(context.Context, dto.EmailSent) error {
	return nil
}

func (r *recordingPublisher) PublishCommandCompleted(_ context.Context, event dto.CommandCompleted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, event)
	return nil
}

func (r *recordingPublisher) Close() error {
	return nil
}

func TestRun_SendIntentInvokesSendTool(t *testing.T) {
	inference := &scriptedInference{replies: []string{
		`{"intent":"send","arguments":{"to":"bob@x.com","message":"hi"}}`,
		"sendEmail",
	}}
	registry := &fakeRegistry{output: &dto.SendResult{Success: true, Message: `Email sent to bob@x.com with subject "Hi"`}}
	publisher := &recordingPublisher{}

	result, err := NewDispatcher(logger.NewTestLogger(), inference, registry, publisher).
		Run(context.Background(), "send an email to bob@x.com saying hi")
	require.NoError(t, err)

	assert.Equal(t, enum.IntentSend, result.Intent)
	assert.Equal(t, enum.ToolSendEmail, result.Tool)
	assert.Equal(t, "bob@x.com", result.Arguments["to"])
	assert.Equal(t, registry.output, result.Output)

	require.Len(t, registry.invocations, 1)
	assert.Equal(t, enum.ToolSendEmail, registry.invocations[0].id)
	assert.Equal(t, map[string]string{"to": "bob@x.com", "message": "hi"}, registry.invocations[0].args)

	require.Len(t, inference.requests, 2)
	assert.True(t, inference.requests[0].JSON)
	assert.Equal(t, "send an email to bob@x.com saying hi", inference.requests[0].Messages[1].Content)
	assert.False(t, inference.requests[1].JSON)
	assert.Contains(t, inference.requests[1].Messages[0].Content, "sendEmail")

	require.Len(t, publisher.completed, 1)
	assert.True(t, publisher.completed[0].Success)
	assert.Equal(t, "sendEmail", publisher.completed[0].Tool)
}

func TestRun_SummaryWithEmptyInbox(t *testing.T) {
	inference := &scriptedInference{replies: []string{
		`{"intent":"summary","arguments":{}}`,
		"fetchEmails",
	}}
	registry := &fakeRegistry{output: []dto.EmailRecord{}}

	result, err := NewDispatcher(logger.NewTestLogger(), inference, registry, &recordingPublisher{}).
		Run(context.Background(), "what's on my email today?")
	require.NoError(t, err)
	assert.Equal(t, enum.IntentSummary, result.Intent)
	assert.Equal(t, enum.ToolFetchEmails, result.Tool)
	assert.Equal(t, []dto.EmailRecord{}, result.Output)
}

func TestRun_NormalizesToolAnswer(t *testing.T) {
	inference := &scriptedInference{replies: []string{
		"```json\n{\"intent\":\" Search \",\"arguments\":{\"keyword\":\"invoice\",\"limit\":3}}\n```",
		" `SearchEmails`.\n",
	}}
	registry := &fakeRegistry{output: []dto.SearchResult{}}

	result, err := NewDispatcher(logger.NewTestLogger(), inference, registry, &recordingPublisher{}).
		Run(context.Background(), "find invoices")
	require.NoError(t, err)
	assert.Equal(t, enum.IntentSearch, result.Intent)
	assert.Equal(t, enum.ToolSearchEmails, result.Tool)
	assert.Equal(t, map[string]string{"keyword": "invoice", "limit": "3"}, result.Arguments)
}

func TestRun_UnknownToolIsLookupError(t *testing.T) {
	inference := &scriptedInference{replies: []string{
		`{"intent":"reply","arguments":{}}`,
		"replyToEmailTool",
	}}
	registry := &fakeRegistry{}
	publisher := &recordingPublisher{}

	result, err := NewDispatcher(logger.NewTestLogger(), inference, registry, publisher).
		Run(context.Background(), "reply to alice")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, mailerrors.ErrLookup)
	assert.Empty(t, registry.invocations)

	require.Len(t, publisher.completed, 1)
	assert.False(t, publisher.completed[0].Success)
	assert.Equal(t, "reply", publisher.completed[0].Intent)
	assert.NotEmpty(t, publisher.completed[0].Error)
}

func TestRun_UnknownIntentIsParseError(t *testing.T) {
	inference := &scriptedInference{replies: []string{`{"intent":"delete","arguments":{}}`}}

	_, err := NewDispatcher(logger.NewTestLogger(), inference, &fakeRegistry{}, &recordingPublisher{}).
		Run(context.Background(), "delete everything")
	assert.ErrorIs(t, err, mailerrors.ErrParse)
	assert.Len(t, inference.requests, 1)
}

func TestRun_NonJSONClassificationIsParseError(t *testing.T) {
	inference := &scriptedInference{replies: []string{"The user wants a summary."}}

	_, err := NewDispatcher(logger.NewTestLogger(), inference, &fakeRegistry{}, &recordingPublisher{}).
		Run(context.Background(), "summarize")
	assert.ErrorIs(t, err, mailerrors.ErrParse)
}

func TestRun_EmptyQueryIsValidationError(t *testing.T) {
	inference := &scriptedInference{}

	_, err := NewDispatcher(logger.NewTestLogger(), inference, &fakeRegistry{}, &recordingPublisher{}).
		Run(context.Background(), "  ")
	assert.ErrorIs(t, err, mailerrors.ErrValidation)
	assert.Empty(t, inference.requests)
}

func TestRun_ToolErrorsPassThrough(t *testing.T) {
	inference := &scriptedInference{replies: []string{
		`{"intent":"send","arguments":{"message":"hi"}}`,
		"sendEmail",
	}}
	registry := &fakeRegistry{err: mailerrors.Validation("tools.sendEmail", "recipient email address is required")}

	_, err := NewDispatcher(logger.NewTestLogger(), inference, registry, &recordingPublisher{}).
		Run(context.Background(), "send hi")
	assert.ErrorIs(t, err, mailerrors.ErrValidation)
}
