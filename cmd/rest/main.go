package main

import (
	"context"
	"log"
	"os"

	"tutorlink-be/internal/bootstrap"
	"tutorlink-be/internal/config"
	"tutorlink-be/internal/server"
	"tutorlink-be/internal/tracer"
	"tutorlink-be/pkg/database"
)

func main() {
	// 0. Tracing (no-op unless OTEL_ENABLED=true)
	if os.Getenv("OTEL_ENABLED") == "true" {
		shutdownTracer := tracer.InitTracer()
		defer shutdownTracer(context.Background())
	}

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer func() {
		if container.NatsPub != nil {
			container.NatsPub.Close()
		}
		if container.NatsSub != nil {
			container.NatsSub.Close()
		}
		container.MessageFeed.Close()
	}()

	// 4. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
