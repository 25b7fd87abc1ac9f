package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	custom_err "github.com/customeros/mailagent/api/errors"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/tracing"
)

type ComposeEmailRequest struct {
	Instruction string `json:"instruction"`
}

type EmailsHandler struct {
	retrieval interfaces.MailRetrievalService
	search    interfaces.MailSearchService
	compose   interfaces.ComposeService
	dispatch  interfaces.MailDispatchService
}

func NewEmailsHandler(retrieval interfaces.MailRetrievalService, search interfaces.MailSearchService,
	compose interfaces.ComposeService, dispatch interfaces.MailDispatchService,
) *EmailsHandler {
	return &EmailsHandler{
		retrieval: retrieval,
		search:    search,
		compose:   compose,
		dispatch:  dispatch,
	}
}

// Today returns every email received today
func (h *EmailsHandler) Today() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Today")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		records, err := h.retrieval.FetchTodayEmails(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"emails": records})
	}
}

// Search filters today's emails by the keyword query parameter
func (h *EmailsHandler) Search() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Search")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		results, err := h.search.SearchEmails(ctx, c.Query("keyword"))
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

func (h *EmailsHandler) Compose() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Compose")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request ComposeEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, invalidPayload(err))
			return
		}

		composed, err := h.compose.ComposeEmail(ctx, request.Instruction)
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, composed)
	}
}

func (h *EmailsHandler) Send() gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := opentracing.StartSpanFromContext(c.Request.Context(), "EmailsHandler.Send")
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.SendEmailRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, invalidPayload(err))
			return
		}

		result, err := h.dispatch.SendEmail(ctx, request)
		if err != nil {
			tracing.TraceErr(span, err)
			custom_err.RespondWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func invalidPayload(err error) error {
	errs := custom_err.NewMultiErrors()
	errs.Add("request", "please provide a valid request payload", errors.Wrap(err, "cannot parse request"))
	return errs
}
