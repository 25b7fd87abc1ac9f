package interfaces

import (
	"context"

	"github.com/customeros/mailagent/dto"
)

type MailRetrievalService interface {
	FetchTodayEmails(ctx context.Context) ([]dto.EmailRecord, error)
}

type MailSearchService interface {
	SearchEmails(ctx context.Context, keyword string) ([]dto.SearchResult, error)
}

type ComposeService interface {
	ComposeEmail(ctx context.Context, instruction string) (*dto.ComposedEmail, error)
}

type MailDispatchService interface {
	SendEmail(ctx context.Context, request dto.SendEmailRequest) (*dto.SendResult, error)
}
