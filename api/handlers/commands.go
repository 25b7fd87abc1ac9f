package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	custom_err "github.com/customeros/mailagent/api/errors"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/tracing"
)

type RunCommandRequest struct {
	Query string `json:"query"`
}

type CommandsHandler struct {
	dispatcher interfaces.CommandDispatcher
}

func NewCommandsHandler(dispatcher interfaces.CommandDispatcher) *CommandsHandler {
	return &CommandsHandler{dispatcher: dispatcher}
}

// Run executes a single free-form command such as "what's on my email today?"
func (h *CommandsHandler) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "CommandsHandler.Run")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request RunCommandRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, invalidPayload(err))
			return
		}

		result, err := h.dispatcher.Run(ctx, request.Query)
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
