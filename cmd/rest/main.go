package main

import (
	"context"
	"log"

	"wine-sommelier-be/internal/bootstrap"
	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/server"
	"wine-sommelier-be/internal/tracer"
	"wine-sommelier-be/pkg/database"
)

func main() {
	ctx := context.Background()

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(ctx)

	cfg := config.Load()

	db, err := database.NewGormDB(cfg.Database.Connection, cfg.App.Environment == "production")
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to database: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Logger.Sync()
	if container.NatsPub != nil {
		defer container.NatsPub.Close()
	}

	// Ingestion consumer drains the in-process bus for the lifetime of
	// the server.
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("[FATAL] Failed to start ingestion consumer: %v", err)
	}

	srv := server.New(cfg, container)
	log.Printf("[INFO] Sommelier API listening on port %s", cfg.App.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("[FATAL] Server stopped: %v", err)
	}
}
