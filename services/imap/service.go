package imap

import (
	"context"
	"time"

	"github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/dto"
	mailerrors "github.com/customeros/mailagent/internal/errors"
	"github.com/customeros/mailagent/internal/logger"
	"github.com/customeros/mailagent/internal/tracing"
)

const fetchBufferSize = 20

type IMAPService struct {
	cfg  *config.MailboxConfig
	log  logger.Logger
	dial Dialer
	now  func() time.Time
}

type Option func(*IMAPService)

func WithDialer(dial Dialer) Option {
	return func(s *IMAPService) {
		s.dial = dial
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *IMAPService) {
		s.now = now
	}
}

func NewIMAPService(cfg *config.MailboxConfig, log logger.Logger, opts ...Option) *IMAPService {
	s := &IMAPService{
		cfg:  cfg,
		log:  log,
		dial: DialMailbox,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchTodayEmails returns every inbox message received since local midnight,
// in mailbox order, without marking any of them as seen.
func (s *IMAPService) FetchTodayEmails(ctx context.Context) ([]dto.EmailRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.FetchTodayEmails")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	c, err := s.dial(ctx, s.cfg)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer s.disconnect(c)

	if _, err = c.Select(s.cfg.ImapFolder, true); err != nil {
		err = mailerrors.Connection("imap.select", errors.Wrapf(err, "failed to select %s", s.cfg.ImapFolder))
		tracing.TraceErr(span, err)
		return nil, err
	}

	startOfDay := StartOfDay(s.now())
	criteria := imap.NewSearchCriteria()
	criteria.Since = startOfDay

	seqNums, err := c.Search(criteria)
	if err != nil {
		err = mailerrors.Connection("imap.search", errors.Wrap(err, "failed to search mailbox"))
		tracing.TraceErr(span, err)
		return nil, err
	}
	span.LogFields(tracingLog.Int("matches", len(seqNums)))

	records := make([]dto.EmailRecord, 0, len(seqNums))
	if len(seqNums) == 0 {
		return records, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		section.FetchItem(),
	}

	messages := make(chan *imap.Message, fetchBufferSize)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messages)
	}()

	skipped := 0
	for msg := range messages {
		record, sent := s.toRecord(msg)
		if !sent.IsZero() && sent.Before(startOfDay) {
			skipped++
			continue
		}
		records = append(records, record)
	}

	if err = <-done; err != nil {
		err = mailerrors.Connection("imap.fetch", errors.Wrap(err, "failed to fetch messages"))
		tracing.TraceErr(span, err)
		return nil, err
	}

	span.LogFields(tracingLog.Int("records", len(records)), tracingLog.Int("skipped", skipped))
	s.log.Debugf("Fetched %d messages from %s (%d dated before today)", len(records), s.cfg.ImapFolder, skipped)

	return records, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
