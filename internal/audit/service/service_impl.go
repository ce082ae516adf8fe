package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/lodgia/internal/audit/domain"
	"github.com/smallbiznis/lodgia/internal/opscope"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Record appends one audit record. Failures are logged and swallowed: the
// audit trail is best-effort and never rolls back the operation it describes.
func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return
	}
	entityType := strings.TrimSpace(entry.EntityType)
	if entityType == "" {
		entityType = "unknown"
	}

	snapshot := map[string]any{}
	for key, value := range entry.Snapshot {
		if key == "" {
			continue
		}
		snapshot[key] = value
	}

	record := auditdomain.AuditLog{
		ID:            s.genID.Generate(),
		EntityType:    entityType,
		Action:        action,
		Actor:         opscope.ActorFromContext(ctx),
		SourceOp:      strings.TrimSpace(entry.SourceOp),
		CorrelationID: opscope.CorrelationIDFromContext(ctx),
		Snapshot:      datatypes.JSONMap(snapshot),
		CreatedAt:     time.Now().UTC(),
	}
	if id := strings.TrimSpace(entry.EntityID); id != "" {
		record.EntityID = &id
	}
	if entry.BookingID != 0 {
		bookingID := entry.BookingID
		record.BookingID = &bookingID
	}
	if entry.RoomID != 0 {
		roomID := entry.RoomID
		record.RoomID = &roomID
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	if filter.StartAt != nil && filter.EndAt != nil && filter.StartAt.After(*filter.EndAt) {
		return nil, auditdomain.ErrInvalidTimeRange
	}
	return s.repo.List(ctx, s.db, filter)
}
