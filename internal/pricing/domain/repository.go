package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Setting is one persisted key-value tariff parameter.
type Setting struct {
	Key       string    `gorm:"primaryKey;type:text;column:key"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedBy string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }

// Repository is the durable key-value settings store.
type Repository interface {
	GetAll(ctx context.Context, db *gorm.DB) ([]Setting, error)
	Upsert(ctx context.Context, db *gorm.DB, key, value, actor string, at time.Time) error
}
