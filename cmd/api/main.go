package main

import (
	"context"
	"log"

	"talentedge-backend/internal/bootstrap"
	"talentedge-backend/internal/server"
	"talentedge-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()
	app := bootstrap.NewApp(context.Background(), cfg)
	defer app.Close()

	r := server.NewRouter(cfg, app)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
