package workflow

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
)

// Dispatcher runs a single free-form command: classify it, let the model pick
// a tool for the intent, then invoke that tool.
type Dispatcher struct {
	log       logger.Logger
	inference interfaces.InferenceService
	tools     interfaces.ToolRegistry
	events    interfaces.EventPublisher
}

func NewDispatcher(log logger.Logger, inference interfaces.InferenceService, tools interfaces.ToolRegistry, events interfaces.EventPublisher) *Dispatcher {
	return &Dispatcher{
		log:       log,
		inference: inference,
		tools:     tools,
		events:    events,
	}
}

func (d *Dispatcher) Run(ctx context.Context, query string) (*dto.CommandResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Dispatcher.Run")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("query", query)

	result := &dto.CommandResult{Query: query}

	err := d.run(ctx, result)
	d.publishCompleted(ctx, result, err)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return result, nil
}

func (d *Dispatcher) run(ctx context.Context, result *dto.CommandResult) error {
	if strings.TrimSpace(result.Query) == "" {
		return mailerrors.Validation("workflow.run", "query is required")
	}

	classified, err := d.classify(ctx, result.Query)
	if err != nil {
		return err
	}
	result.Intent = classified.Intent
	result.Arguments = classified.Arguments

	toolID, err := d.selectTool(ctx, classified.Intent)
	if err != nil {
		return err
	}
	result.Tool = toolID

	d.log.Infof("Running %s for intent %s", toolID, classified.Intent)
	output, err := d.tools.Invoke(ctx, toolID, classified.Arguments)
	if err != nil {
		return err
	}
	result.Output = output

	return nil
}

func (d *Dispatcher) publishCompleted(ctx context.Context, result *dto.CommandResult, runErr error) {
	if d.events == nil {
		return
	}

	event := dto.CommandCompleted{
		Query:   result.Query,
		Intent:  result.Intent.String(),
		Tool:    result.Tool.String(),
		Success: runErr == nil,
	}
	if runErr != nil {
		event.Error = runErr.Error()
	}

	if err := d.events.PublishCommandCompleted(ctx, event); err != nil {
		d.log.Warnf("Failed to publish CommandCompleted event: %v", err)
	}
}
