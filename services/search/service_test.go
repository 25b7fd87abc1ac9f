package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
)

type stubRetrieval struct {
	records []dto.EmailRecord
	err     error
}

func (s *stubRetrieval) FetchTodayEmails(context.Context) ([]dto.EmailRecord, error) {
	return s.records, s.err
}

var inbox = []dto.EmailRecord{
	{From: "alice@example.com", Subject: "Invoice #42", Body: "Please pay by Friday."},
	{From: "bob@example.com", Subject: "Lunch", Body: "The INVOICE template is in the drive."},
	{From: "carol@example.com", Subject: "Standup", Body: "Moved to 10am."},
}

func TestSearchEmails_MatchesSubjectOrBodyIgnoringCase(t *testing.T) {
	svc := NewSearchService(&config.SearchConfig{}, logger.NewTestLogger(), &stubRetrieval{records: inbox})

	results, err := svc.SearchEmails(context.Background(), "invoice")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alice@example.com", results[0].From)
	assert.Equal(t, "Invoice #42", results[0].Subject)
	assert.Equal(t, "Please pay by Friday.", results[0].Summary)
	assert.Equal(t, "bob@example.com", results[1].From)
}

func TestSearchEmails_NoMatchesReturnsEmptySlice(t *testing.T) {
	svc := NewSearchService(&config.SearchConfig{}, logger.NewTestLogger(), &stubRetrieval{records: inbox})

	results, err := svc.SearchEmails(context.Background(), "payroll")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchEmails_EmptyKeywordMatchesAll(t *testing.T) {
	svc := NewSearchService(&config.SearchConfig{}, logger.NewTestLogger(), &stubRetrieval{records: inbox})

	results, err := svc.SearchEmails(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, results, len(inbox))
}

func TestSearchEmails_TruncatesSummaryWhenConfigured(t *testing.T) {
	svc := NewSearchService(&config.SearchConfig{SummaryMaxLength: 10}, logger.NewTestLogger(), &stubRetrieval{records: inbox})

	results, err := svc.SearchEmails(context.Background(), "standup")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Moved to 1...", results[0].Summary)
}

func TestSearchEmails_PassesThroughRetrievalErrors(t *testing.T) {
	retrievalErr := mailerrors.Connection("imap.dial", assert.AnError)
	svc := NewSearchService(&config.SearchConfig{}, logger.NewTestLogger(), &stubRetrieval{err: retrievalErr})

	results, err := svc.SearchEmails(context.Background(), "invoice")
	assert.Nil(t, results)
	assert.ErrorIs(t, err, mailerrors.ErrConnection)
}
