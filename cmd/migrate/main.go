package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"wine-sommelier-be/internal/migration"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/pkg/database"
)

// Standalone migration runner for deploy pipelines that migrate before the
// API boots. The server also migrates on startup, so this is optional in
// development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn, os.Getenv("GO_ENV") == "production")
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	sysLogger := logger.NewZapLogger(os.Getenv("LOG_FILE_PATH"), false)
	defer sysLogger.Sync()

	if err := migration.Run(db, sysLogger); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Migration complete")
}
