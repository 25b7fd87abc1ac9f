package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"gorm.io/gorm"

	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/models"
	"github.com/customeros/mailagent/internal/tracing"
)

type conversationMessageRepository struct {
	db *gorm.DB
}

func NewConversationMessageRepository(db *gorm.DB) interfaces.ConversationMemory {
	return &conversationMessageRepository{db: db}
}

// History returns the latest limit messages of a thread, oldest first
func (r *conversationMessageRepository) History(ctx context.Context, threadID string, limit int) ([]*models.ConversationMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "conversationMessageRepository.History")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag(tracing.SpanTagThreadId, threadID)

	var messages []*models.ConversationMessage
	if err := latestMessagesQuery(r.db.WithContext(ctx), threadID, limit).Find(&messages).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	reverse(messages)
	span.LogFields(tracingLog.Int("messages", len(messages)))

	return messages, nil
}

// latestMessagesQuery selects the newest limit messages of a thread, newest first.
func latestMessagesQuery(db *gorm.DB, threadID string, limit int) *gorm.DB {
	query := db.
		Where("thread_id = ?", threadID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query
}

func reverse(messages []*models.ConversationMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

// stampCreatedAt gives unset rows increasing timestamps in argument order.
// Postgres would otherwise stamp every row of one transaction with the same time.
func stampCreatedAt(messages []*models.ConversationMessage, base time.Time) {
	for i, message := range messages {
		if message != nil && message.CreatedAt.IsZero() {
			message.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
	}
}

// Append stores messages in a single transaction
func (r *conversationMessageRepository) Append(ctx context.Context, messages ...*models.ConversationMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "conversationMessageRepository.Append")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if len(messages) == 0 {
		return nil
	}
	span.SetTag(tracing.SpanTagThreadId, messages[0].ThreadID)

	stampCreatedAt(messages, time.Now().UTC())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, message := range messages {
			if err := tx.Create(message).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return fmt.Errorf("failed to save conversation messages: %w", err)
	}

	return nil
}
