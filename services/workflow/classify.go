package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

var classifyPrompt = fmt.Sprintf(
	"Figure out what the user wants to do with their email. "+
		"Respond in JSON with \"intent\" (one of: %s) and \"arguments\", an object of string values "+
		"such as \"to\", \"subject\", \"message\" or \"keyword\" taken from the request.",
	intentNames(),
)

type classification struct {
	Intent    string          `json:"intent"`
	Arguments json.RawMessage `json:"arguments"`
}

func (d *Dispatcher) classify(ctx context.Context, query string) (*dto.Classification, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Dispatcher.classify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	response, err := d.inference.Complete(ctx, dto.CompletionRequest{
		Messages: []dto.ChatMessage{
			{Role: enum.RoleSystem, Content: classifyPrompt},
			{Role: enum.RoleUser, Content: query},
		},
		JSON: true,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result, err := parseClassification(response.Content)
	if err != nil {
		d.log.Warnf("Unusable classification response: %q", response.Content)
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.LogObjectAsJson(span, "classification", result)

	return result, nil
}

func parseClassification(content string) (*dto.Classification, error) {
	var raw classification
	if err := json.Unmarshal([]byte(utils.StripCodeFence(content)), &raw); err != nil {
		return nil, mailerrors.Parse("workflow.classify", errors.Wrap(err, "response is not a JSON object"))
	}

	intent, ok := enum.ParseIntent(raw.Intent)
	if !ok {
		return nil, mailerrors.Parse("workflow.classify", errors.Errorf("unknown intent %q", raw.Intent))
	}

	args, err := utils.FlattenArguments(raw.Arguments)
	if err != nil {
		return nil, mailerrors.Parse("workflow.classify", err)
	}

	return &dto.Classification{
		Intent:    intent,
		Arguments: args,
	}, nil
}

func intentNames() string {
	names := make([]string, 0, len(enum.Intents))
	for _, intent := range enum.Intents {
		names = append(names, intent.String())
	}
	return strings.Join(names, ", ")
}
