package database

import (
	"context"
	"fmt"
)

// Migrate creates or updates the schema.
func (d *DB) Migrate(ctx context.Context) error {
	err := d.Gorm.WithContext(ctx).AutoMigrate(
		&branchRow{},
		&userRow{},
		&userBranchRow{},
		&orderRow{},
		&complaintRow{},
		&orderAuditRow{},
		&complaintAuditRow{},
	)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
