package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/lodgia/internal/pricing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetAll(ctx context.Context, db *gorm.DB) ([]domain.Setting, error) {
	var settings []domain.Setting
	err := db.WithContext(ctx).
		Order("key asc").
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, key, value, actor string, at time.Time) error {
	if db.Dialector.Name() == "mysql" {
		return db.WithContext(ctx).Exec(
			"INSERT INTO settings (`key`, value, updated_by, updated_at) VALUES (?, ?, ?, ?) "+
				"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_by = VALUES(updated_by), updated_at = VALUES(updated_at)",
			key, value, actor, at,
		).Error
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO settings (key, value, updated_by, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE
		 SET value = excluded.value, updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		key, value, actor, at,
	).Error
}
