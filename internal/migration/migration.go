// Package migration creates the schema on startup so a fresh install is
// usable out of the box.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	auditdomain "github.com/smallbiznis/lodgia/internal/audit/domain"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	invoicedomain "github.com/smallbiznis/lodgia/internal/invoice/domain"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
	roomdomain "github.com/smallbiznis/lodgia/internal/room/domain"
	"gorm.io/gorm"
)

// Run applies the schema. Postgres goes through versioned SQL migrations;
// other dialects fall back to model-driven migration, which also covers
// the in-memory sqlite databases used by tests.
func Run(conn *gorm.DB) error {
	if conn.Dialector.Name() != "postgres" {
		return autoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return runVersioned(sqlDB)
}

func runVersioned(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not close the migrator here because it would close the shared *sql.DB.

	return nil
}

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&roomdomain.RoomType{},
		&roomdomain.Room{},
		&bookingdomain.Booking{},
		&bookingdomain.BookingExtra{},
		&bookingdomain.StayInfo{},
		&invoicedomain.Invoice{},
		&pricingdomain.Setting{},
		&auditdomain.AuditLog{},
	)
}
