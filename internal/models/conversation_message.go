package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/customeros/mailagent/internal/enum"
)

// ConversationMessage is one turn of an agent thread.
type ConversationMessage struct {
	ID        string           `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ThreadID  string           `gorm:"column:thread_id;type:varchar(50);index;not null" json:"threadId"`
	Role      enum.MessageRole `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Content   string           `gorm:"column:content;type:text" json:"content"`
	ToolNames pq.StringArray   `gorm:"column:tool_names;type:text[]" json:"toolNames"`
	Metadata  JSONMap          `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt time.Time        `gorm:"column:created_at;type:timestamp;default:current_timestamp;index" json:"createdAt"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
