// Package seed bootstraps a fresh install with the default room types,
// a starter room block, and the default tariff settings.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"gorm.io/gorm"
)

const starterRoomsPerType = 4

// Ensure seeds the defaults. Every write is idempotent so repeated
// startups leave an already-seeded database untouched.
func Ensure(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		types, err := ensureRoomTypes(ctx, tx, node)
		if err != nil {
			return err
		}
		if err := ensureRooms(ctx, tx, node, types); err != nil {
			return err
		}
		return ensureSettings(ctx, tx)
	})
}

func ensureRoomTypes(ctx context.Context, tx *gorm.DB, node *snowflake.Node) ([]roomdomain.RoomType, error) {
	defaults := pricingdomain.Defaults()
	now := time.Now().UTC()

	wanted := []roomdomain.RoomType{
		{Code: pricingdomain.RoomTypeSingle, Name: "Single"},
		{Code: pricingdomain.RoomTypeDouble, Name: "Double"},
	}

	out := make([]roomdomain.RoomType, 0, len(wanted))
	for _, want := range wanted {
		var existing roomdomain.RoomType
		err := tx.WithContext(ctx).Where("code = ?", want.Code).First(&existing).Error
		if err == nil {
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		tariff := defaults.TariffFor(want.Code)
		existing = roomdomain.RoomType{
			ID:           node.Generate(),
			Code:         want.Code,
			Name:         want.Name,
			NightlyPrice: tariff.NightlyRate,
			DailyPrice:   tariff.DailyRate,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&existing).Error; err != nil {
			return nil, err
		}
		out = append(out, existing)
	}
	return out, nil
}

func ensureRooms(ctx context.Context, tx *gorm.DB, node *snowflake.Node, types []roomdomain.RoomType) error {
	now := time.Now().UTC()

	for floor, roomType := range types {
		for i := 1; i <= starterRoomsPerType; i++ {
			code := fmt.Sprintf("%d%02d", floor+1, i)

			var count int64
			if err := tx.WithContext(ctx).Model(&roomdomain.Room{}).
				Where("code = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			room := roomdomain.Room{
				ID:         node.Generate(),
				Code:       code,
				RoomTypeID: roomType.ID,
				Floor:      floor + 1,
				Status:     roomdomain.RoomStatusVacant,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.WithContext(ctx).Create(&room).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureSettings(ctx context.Context, tx *gorm.DB) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&pricingdomain.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for key, value := range pricingdomain.Flatten(pricingdomain.Defaults()) {
		setting := pricingdomain.Setting{
			Key:       key,
			Value:     strconv.FormatInt(value, 10),
			UpdatedBy: "seed",
			UpdatedAt: now,
		}
		if err := tx.WithContext(ctx).Create(&setting).Error; err != nil {
			return err
		}
	}
	return nil
}
