package search

import (
	"context"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
)

type SearchService struct {
	cfg       *config.SearchConfig
	log       logger.Logger
	retrieval interfaces.MailRetrievalService
}

func NewSearchService(cfg *config.SearchConfig, log logger.Logger, retrieval interfaces.MailRetrievalService) *SearchService {
	return &SearchService{
		cfg:       cfg,
		log:       log,
		retrieval: retrieval,
	}
}

// SearchEmails filters today's mail to messages whose subject or body contains
// keyword, ignoring case. An empty keyword matches everything.
func (s *SearchService) SearchEmails(ctx context.Context, keyword string) ([]dto.SearchResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SearchService.SearchEmails")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogFields(tracingLog.String("keyword", keyword))

	records, err := s.retrieval.FetchTodayEmails(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	maxLength := 0
	if s.cfg != nil {
		maxLength = s.cfg.SummaryMaxLength
	}

	results := make([]dto.SearchResult, 0)
	for _, record := range records {
		if !utils.ContainsFold(record.Subject, keyword) && !utils.ContainsFold(record.Body, keyword) {
			continue
		}
		results = append(results, dto.SearchResult{
			From:    record.From,
			Subject: record.Subject,
			Summary: utils.Truncate(record.Body, maxLength),
		})
	}

	span.LogFields(tracingLog.Int("scanned", len(records)), tracingLog.Int("matched", len(results)))
	return results, nil
}
