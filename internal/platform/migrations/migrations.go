package migrations

import (
	"fmt"

	"gorm.io/gorm"

	catalogpg "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/persistence/postgres"
	identitypg "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/persistence/postgres"
	masterpg "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/persistence/postgres"
	orderpg "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/persistence/postgres"
	schedulepg "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/persistence/postgres"
)

// Models returns every table of the bounded contexts in dependency order.
func Models() []any {
	var models []any
	models = append(models, masterpg.Models()...)
	models = append(models, identitypg.Models()...)
	models = append(models, catalogpg.Models()...)
	models = append(models, schedulepg.Models()...)
	models = append(models, orderpg.Models()...)
	return models
}

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
