package repository

import (
	"context"

	"github.com/smallbiznis/lodgia/internal/room/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListBoard(ctx context.Context, db *gorm.DB) ([]domain.BoardRow, error) {
	var rows []domain.BoardRow
	err := db.WithContext(ctx).Raw(
		`SELECT r.id AS room_id, r.code, r.floor, rt.code AS room_type_code,
		        r.status, r.occupied_since, r.current_kind, r.current_guest_name AS guest_name
		 FROM rooms r
		 JOIN room_types rt ON rt.id = r.room_type_id
		 WHERE r.deleted_at IS NULL
		 ORDER BY r.floor, r.code`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
