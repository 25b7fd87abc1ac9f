package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

const ComposeSystemPrompt = "Convert this message into a formal, professional email in English with a suitable subject line. " +
	"Respond in JSON with \"subject\" and \"emailBody\" fields."

type ComposeService struct {
	log       logger.Logger
	inference interfaces.InferenceService
}

func NewComposeService(log logger.Logger, inference interfaces.InferenceService) *ComposeService {
	return &ComposeService{
		log:       log,
		inference: inference,
	}
}

// ComposeEmail turns a casual instruction into a formal subject and body.
func (s *ComposeService) ComposeEmail(ctx context.Context, instruction string) (*dto.ComposedEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ComposeService.ComposeEmail")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if strings.TrimSpace(instruction) == "" {
		err := mailerrors.Validation("compose", "instruction is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	response, err := s.inference.Complete(ctx, dto.CompletionRequest{
		Messages: []dto.ChatMessage{
			{Role: enum.RoleSystem, Content: ComposeSystemPrompt},
			{Role: enum.RoleUser, Content: instruction},
		},
		JSON: true,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	composed, err := parseComposedEmail(response.Content)
	if err != nil {
		s.log.Warnf("Unusable compose response: %q", response.Content)
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.LogObjectAsJson(span, "composed", composed)

	return composed, nil
}

func parseComposedEmail(content string) (*dto.ComposedEmail, error) {
	var composed dto.ComposedEmail
	if err := json.Unmarshal([]byte(utils.StripCodeFence(content)), &composed); err != nil {
		return nil, mailerrors.Parse("compose", errors.Wrap(err, "response is not a JSON object"))
	}

	composed.Subject = strings.TrimSpace(composed.Subject)
	composed.EmailBody = strings.TrimSpace(composed.EmailBody)

	if composed.Subject == "" || composed.EmailBody == "" {
		return nil, mailerrors.Parse("compose", errors.New("response is missing subject or emailBody"))
	}
	return &composed, nil
}
