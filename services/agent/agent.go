package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/models"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

var ErrTooManyToolIterations = errors.New("agent exceeded tool iterations")

type Agent struct {
	cfg          *config.AgentConfig
	log          logger.Logger
	instructions string
	inference    interfaces.InferenceService
	tools        interfaces.ToolRegistry
	memory       interfaces.ConversationMemory
}

func NewAgent(cfg *config.AgentConfig, log logger.Logger, inference interfaces.InferenceService, tools interfaces.ToolRegistry, memory interfaces.ConversationMemory) *Agent {
	instructions := cfg.Instructions
	if strings.TrimSpace(instructions) == "" {
		instructions = DefaultInstructions
	}
	return &Agent{
		cfg:          cfg,
		log:          log,
		instructions: instructions,
		inference:    inference,
		tools:        tools,
		memory:       memory,
	}
}

// Chat answers one user message within a thread, calling tools as the model asks.
// An empty threadID starts a new thread.
func (a *Agent) Chat(ctx context.Context, threadID, message string) (*dto.AgentReply, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Agent.Chat")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if strings.TrimSpace(message) == "" {
		err := mailerrors.Validation("agent.chat", "message is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	if threadID == "" {
		threadID = utils.GenerateThreadID()
	}
	ctx = utils.SetThreadIDInContext(ctx, threadID)
	span.SetTag(tracing.SpanTagThreadId, threadID)

	history, err := a.memory.History(ctx, threadID, a.cfg.HistoryLimit)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	messages := make([]dto.ChatMessage, 0, len(history)+2)
	messages = append(messages, dto.ChatMessage{Role: enum.RoleSystem, Content: a.instructions})
	for _, m := range history {
		messages = append(messages, dto.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, dto.ChatMessage{Role: enum.RoleUser, Content: message})

	reply := &dto.AgentReply{
		ThreadID:  threadID,
		ToolCalls: []dto.ToolInvocation{},
	}
	definitions := a.tools.Definitions()

	for round := 0; ; round++ {
		response, err := a.inference.Complete(ctx, dto.CompletionRequest{
			Messages: messages,
			Tools:    definitions,
		})
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}

		if len(response.ToolCalls) == 0 {
			reply.Reply = strings.TrimSpace(response.Content)
			break
		}

		if round >= a.cfg.MaxToolIterations {
			a.log.Warnf("Thread %s stopped after %d tool rounds", threadID, round)
			tracing.TraceErr(span, ErrTooManyToolIterations)
			return nil, ErrTooManyToolIterations
		}

		messages = append(messages, dto.ChatMessage{
			Role:      enum.RoleAssistant,
			Content:   response.Content,
			ToolCalls: response.ToolCalls,
		})
		for _, call := range response.ToolCalls {
			invocation, content := a.invokeTool(ctx, call)
			reply.ToolCalls = append(reply.ToolCalls, invocation)
			messages = append(messages, dto.ChatMessage{
				Role:       enum.RoleTool,
				Content:    content,
				ToolCallID: call.ID,
			})
		}
	}
	span.LogFields(tracingLog.Int("toolCalls", len(reply.ToolCalls)))

	if err = a.remember(ctx, threadID, message, reply); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return reply, nil
}

// invokeTool runs one model-requested call. Failures are reported back to the
// model as {"error": ...} instead of ending the turn.
func (a *Agent) invokeTool(ctx context.Context, call dto.ToolCall) (dto.ToolInvocation, string) {
	invocation := dto.ToolInvocation{Tool: call.Name}

	args, err := utils.FlattenArguments([]byte(call.Arguments))
	if err != nil {
		err = mailerrors.Parse("agent.tool", err)
	} else {
		invocation.Arguments = args
	}

	var result any
	if err == nil {
		toolID, ok := enum.ParseToolID(call.Name)
		if !ok {
			err = mailerrors.Lookup("agent.tool", errors.Errorf("unknown tool %q", call.Name))
		} else {
			invocation.Tool = toolID.String()
			result, err = a.tools.Invoke(ctx, toolID, args)
		}
	}

	if err != nil {
		a.log.Infof("Tool %s failed: %v", call.Name, err)
		invocation.Error = err.Error()
		return invocation, toolContent("error", err.Error())
	}
	return invocation, toolContent("result", result)
}

func toolContent(key string, value any) string {
	content, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		content, _ = json.Marshal(map[string]any{"error": err.Error()})
	}
	return string(content)
}

func (a *Agent) remember(ctx context.Context, threadID, message string, reply *dto.AgentReply) error {
	toolNames := make([]string, 0, len(reply.ToolCalls))
	for _, call := range reply.ToolCalls {
		toolNames = append(toolNames, call.Tool)
	}

	return a.memory.Append(ctx,
		&models.ConversationMessage{
			ThreadID: threadID,
			Role:     enum.RoleUser,
			Content:  message,
		},
		&models.ConversationMessage{
			ThreadID:  threadID,
			Role:      enum.RoleAssistant,
			Content:   reply.Reply,
			ToolNames: toolNames,
			Metadata: models.JSONMap{
				"appSource": utils.GetAppSourceFromContext(ctx),
				"requestId": utils.GetRequestIDFromContext(ctx),
			},
		},
	)
}
