package main

import (
	"context"
	"log"

	"trace-journal-be/internal/bootstrap"
	"trace-journal-be/internal/config"
	"trace-journal-be/internal/server"
	"trace-journal-be/internal/tracer"
	"trace-journal-be/pkg/database"
)

func main() {
	// 0. Initialize tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start background services
	go func() {
		log.Println("Background: Starting revision consumers...")
		if err := container.ConsumerService.Start(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	// 5. Run server
	srv := server.New(cfg, container)
	err = srv.Run()

	// Drain debounced settings writes before exiting.
	container.SettingsService.Flush()
	log.Fatal(err)
}
