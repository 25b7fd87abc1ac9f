package tools

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/enum"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

// Argument keys, each followed by the aliases small models tend to use instead.
var (
	keywordKeys     = []string{"keyword", "query", "sender"}
	instructionKeys = []string{"instruction", "message", "user_message", "body"}
	recipientKeys   = []string{"to", "recipient", "email", "address"}
	subjectKeys     = []string{"subject"}
	emailBodyKeys   = []string{"emailBody", "email_body", "body"}
	sendPromptKeys  = []string{"message", "instruction", "user_message"}
)

type Registry struct {
	log       logger.Logger
	retrieval interfaces.MailRetrievalService
	search    interfaces.MailSearchService
	compose   interfaces.ComposeService
	dispatch  interfaces.MailDispatchService
}

func NewRegistry(log logger.Logger,
	retrieval interfaces.MailRetrievalService,
	search interfaces.MailSearchService,
	compose interfaces.ComposeService,
	dispatch interfaces.MailDispatchService,
) *Registry {
	return &Registry{
		log:       log,
		retrieval: retrieval,
		search:    search,
		compose:   compose,
		dispatch:  dispatch,
	}
}

// Invoke runs the tool registered under id.
func (r *Registry) Invoke(ctx context.Context, id enum.ToolID, args map[string]string) (any, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Registry.Invoke")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("tool", id.String())
	tracing.LogObjectAsJson(span, "arguments", args)

	var result any
	var err error

	switch id {
	case enum.ToolFetchEmails:
		result, err = r.retrieval.FetchTodayEmails(ctx)
	case enum.ToolSearchEmails:
		result, err = r.search.SearchEmails(ctx, utils.Argument(args, keywordKeys...))
	case enum.ToolComposeEmail:
		result, err = r.compose.ComposeEmail(ctx, utils.Argument(args, instructionKeys...))
	case enum.ToolSendEmail:
		result, err = r.sendEmail(ctx, args)
	default:
		err = mailerrors.Lookup("tools.invoke", errors.Errorf("no tool registered for %q", id))
	}

	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogFields(tracingLog.Bool("success", true))
	return result, nil
}

// sendEmail sends a ready subject and body, or composes them first from a free-form message.
func (r *Registry) sendEmail(ctx context.Context, args map[string]string) (*dto.SendResult, error) {
	to := utils.Argument(args, recipientKeys...)
	if to == "" {
		return nil, mailerrors.Validation("tools.sendEmail", "recipient email address is required")
	}

	subject := utils.Argument(args, subjectKeys...)
	body := utils.Argument(args, emailBodyKeys...)

	if subject == "" || body == "" {
		prompt := utils.FirstNonEmpty(utils.Argument(args, sendPromptKeys...), body)
		if prompt == "" {
			return nil, mailerrors.Validation("tools.sendEmail", "subject and emailBody, or a message to compose, are required")
		}

		r.log.Debugf("Composing email to %s before sending", to)
		composed, err := r.compose.ComposeEmail(ctx, prompt)
		if err != nil {
			return nil, err
		}
		subject = utils.FirstNonEmpty(subject, composed.Subject)
		body = composed.EmailBody
	}

	return r.dispatch.SendEmail(ctx, dto.SendEmailRequest{
		To:        to,
		Subject:   subject,
		EmailBody: body,
	})
}
