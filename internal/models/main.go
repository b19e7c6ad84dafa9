package models

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	StatsViewName  = "waitlist_stats"
	ByCityViewName = "waitlist_by_city"
)

// ModelRegistry lists the tables created by --auto-migrate.
var ModelRegistry = []any{
	&WaitlistEntry{},
}

// aggregateViews mirrors the views in migrations/000001_create_waitlist.up.sql.
var aggregateViews = []struct {
	name string
	body string
}{
	{
		name: StatsViewName,
		body: `SELECT actor_type, COUNT(*) AS count FROM waitlist GROUP BY actor_type`,
	},
	{
		name: ByCityViewName,
		body: `SELECT city, COUNT(*) AS count FROM waitlist WHERE city IS NOT NULL AND city <> '' GROUP BY city`,
	},
}

// EnsureAggregateViews creates the reporting views for the connected dialect.
func EnsureAggregateViews(db *gorm.DB) error {
	for _, v := range aggregateViews {
		var stmt string
		if db.Dialector.Name() == "sqlite" {
			stmt = fmt.Sprintf("CREATE VIEW IF NOT EXISTS %s AS %s", v.name, v.body)
		} else {
			stmt = fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", v.name, v.body)
		}

		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create view %s: %w", v.name, err)
		}
	}

	return nil
}
