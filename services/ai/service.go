package ai

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
)

type inferenceService struct {
	cfg    *config.InferenceConfig
	log    logger.Logger
	client openai.Client
}

// NewInferenceService talks to any OpenAI-compatible chat completions endpoint,
// a local Ollama server by default.
func NewInferenceService(cfg *config.InferenceConfig, log logger.Logger) interfaces.InferenceService {
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.ApiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	)

	return &inferenceService{
		cfg:    cfg,
		log:    log,
		client: client,
	}
}

func (s *inferenceService) Complete(ctx context.Context, request dto.CompletionRequest) (*dto.CompletionResponse, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "inferenceService.Complete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("model", s.cfg.Model)
	span.LogFields(
		tracingLog.Int("messages", len(request.Messages)),
		tracingLog.Int("tools", len(request.Tools)),
		tracingLog.Bool("json", request.JSON),
	)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.cfg.Model),
		Messages:    toMessageParams(request.Messages),
		Temperature: openai.Float(s.cfg.Temperature),
	}
	if len(request.Tools) > 0 {
		params.Tools = toToolParams(request.Tools)
	}
	if request.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = mailerrors.Connection("inference.complete", errors.Wrap(err, "chat completion request failed"))
		tracing.TraceErr(span, err)
		return nil, err
	}

	if len(completion.Choices) == 0 {
		err = mailerrors.Parse("inference.complete", errors.New("no choices in completion response"))
		tracing.TraceErr(span, err)
		return nil, err
	}

	message := completion.Choices[0].Message
	response := &dto.CompletionResponse{
		Content: message.Content,
	}
	for _, call := range message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, dto.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	tracing.LogObjectAsJson(span, "response", response)

	return response, nil
}

func toMessageParams(messages []dto.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case enum.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case enum.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				params = append(params, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := &openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			for _, call := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			params = append(params, openai.ChatCompletionMessageParamUnion{OfAssistant: assistant})
		case enum.RoleTool:
			params = append(params, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}

func toToolParams(tools []dto.ToolDefinition) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  shared.FunctionParameters(tool.Parameters),
			},
		})
	}
	return params
}
