package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	custom_err "github.com/customeros/mailagent/api/errors"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/tracing"
)

type AgentHandler struct {
	agent interfaces.Agent
}

func NewAgentHandler(agent interfaces.Agent) *AgentHandler {
	return &AgentHandler{agent: agent}
}

func (h *AgentHandler) Chat() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "AgentHandler.Chat")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.AgentRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, invalidPayload(err))
			return
		}

		reply, err := h.agent.Chat(ctx, request.ThreadID, request.Message)
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, reply)
	}
}
