package migration

import (
	"fmt"

	"gorm.io/gorm"

	"wine-sommelier-be/internal/model"
	"wine-sommelier-be/internal/pkg/logger"
)

// additiveColumn is a schema evolution step: a nullable column added to a
// table that may predate it. Adds are guarded by a column-exists check so
// re-running the migration is a no-op.
type additiveColumn struct {
	table  string
	column string
}

var additiveColumns = []additiveColumn{
	{table: "conversations", column: "user_name"},
	{table: "conversations", column: "session_id"},
	{table: "user_preferences", column: "user_name"},
	{table: "user_preferences", column: "total_interactions"},
	{table: "user_preferences", column: "favorite_wines"},
	{table: "user_preferences", column: "last_session_id"},
	{table: "wine_ratings", column: "user_name"},
}

// Run applies the schema idempotently: the pgvector extension, the four
// tables, and the additive columns later releases introduced.
func Run(db *gorm.DB, log logger.ILogger) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Conversation{},
		&model.UserPreference{},
		&model.WineRating{},
		&model.KnowledgeChunk{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	migrator := db.Migrator()
	for _, add := range additiveColumns {
		if migrator.HasColumn(modelFor(add.table), add.column) {
			continue
		}
		if err := addColumn(db, add); err != nil {
			return fmt.Errorf("add column %s.%s: %w", add.table, add.column, err)
		}
		log.Info("migration", "added column", map[string]interface{}{
			"table":  add.table,
			"column": add.column,
		})
	}

	return nil
}

func modelFor(table string) interface{} {
	switch table {
	case "conversations":
		return &model.Conversation{}
	case "user_preferences":
		return &model.UserPreference{}
	case "wine_ratings":
		return &model.WineRating{}
	default:
		return &model.KnowledgeChunk{}
	}
}

func addColumn(db *gorm.DB, add additiveColumn) error {
	definition := "varchar(255)"
	switch add.column {
	case "total_interactions":
		definition = "bigint NOT NULL DEFAULT 0"
	case "favorite_wines":
		definition = "jsonb NOT NULL DEFAULT '[]'::jsonb"
	}
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", add.table, add.column, definition)
	return db.Exec(sql).Error
}
