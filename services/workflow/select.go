package workflow

import (
	"context"
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

// selectTool asks the model which tool handles intent. The answer must name a registered tool.
func (d *Dispatcher) selectTool(ctx context.Context, intent enum.Intent) (enum.ToolID, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Dispatcher.selectTool")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("intent", intent.String())

	prompt := fmt.Sprintf("Map this intent to a tool name: %s. Available tools: %s. Answer with the tool name only.",
		intent, strings.Join(enum.ToolIDNames(), ", "))

	response, err := d.inference.Complete(ctx, dto.CompletionRequest{
		Messages: []dto.ChatMessage{
			{Role: enum.RoleSystem, Content: prompt},
			{Role: enum.RoleUser, Content: fmt.Sprintf(`{"intent":%q}`, intent.String())},
		},
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	answer := utils.NormalizeModelToken(response.Content)
	toolID, ok := enum.ParseToolID(answer)
	if !ok {
		err = mailerrors.Lookup("workflow.selectTool", errors.Errorf("model selected unknown tool %q", answer))
		tracing.TraceErr(span, err)
		return "", err
	}
	span.SetTag("tool", toolID.String())

	return toolID, nil
}
