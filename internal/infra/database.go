package infra

import (
	"fmt"

	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches GORM cannot express. The functional
// unique index on lower(name) and the partial unique indexes on the junction
// table are the storage-level constraints that close the check-then-write
// races of concurrent relation inserts.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface pg unique violations as gorm.ErrDuplicatedKey so the
		// services can map them to a conflict instead of a bare 500.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.ProductGroupItem{},
		&model.ProductGroupExchangeRule{},
		&model.ProductComponentHierarchy{},
		&model.ProductComponent{},
		&model.CompositeProductXHierarchy{},
		&model.ProductComponentLink{},
		&model.Demand{},
		&model.ProductionOrder{},
		&model.Order{},
		&model.OrderItem{},
		&model.User{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot generate.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Case-insensitive uniqueness for hierarchy names.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_hierarchies_name_ci
		     ON product_component_hierarchies (lower(name))`,
		// Overdue scans hit (status, expected_date) constantly.
		`CREATE INDEX IF NOT EXISTS idx_demands_status_expected
		     ON demands (status, expected_date)`,
		`CREATE INDEX IF NOT EXISTS idx_production_orders_status_sched_end
		     ON production_orders (status, scheduled_end_date)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
