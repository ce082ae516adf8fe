// Package domain contains the append-only audit trail models.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one append-only record of a state-changing operation.
type AuditLog struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	EntityType    string            `gorm:"type:text;not null;index"`
	EntityID      *string           `gorm:"type:text;index"`
	BookingID     *snowflake.ID     `gorm:"index"`
	RoomID        *snowflake.ID     `gorm:"index"`
	Action        string            `gorm:"type:text;not null;index"`
	Actor         string            `gorm:"type:text;not null"`
	SourceOp      string            `gorm:"type:text"`
	CorrelationID string            `gorm:"type:text;index"`
	Snapshot      datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

// Entry is the caller-facing shape of one audit write.
type Entry struct {
	EntityType string
	EntityID   string
	BookingID  snowflake.ID
	RoomID     snowflake.ID
	Action     string
	SourceOp   string
	Snapshot   map[string]any
}

// ListFilter narrows an audit trail query.
type ListFilter struct {
	EntityType string
	BookingID  snowflake.ID
	Action     string
	StartAt    *time.Time
	EndAt      *time.Time
	Limit      int
}

// Repository persists audit records.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]AuditLog, error)
}

// Service writes and reads the audit trail. Writes are best-effort: a
// failed insert never fails the business operation that produced it.
type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}
