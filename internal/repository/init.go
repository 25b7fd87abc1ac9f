package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/interfaces"
	"github.com/customeros/mailagent/internal/models"
)

type Repositories struct {
	ConversationMessageRepository interfaces.ConversationMemory
}

func InitRepositories(mailagentDB *gorm.DB) *Repositories {
	return &Repositories{
		ConversationMessageRepository: NewConversationMessageRepository(mailagentDB),
	}
}

func MigrateMailagentDB(dbConfig *config.MailagentDatabaseConfig, mailagentDB *gorm.DB) error {
	db, err := mailagentDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = mailagentDB.AutoMigrate(
		&models.ConversationMessage{},
	)

	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
