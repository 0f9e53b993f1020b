package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/skillhub/internal/server"
	"github.com/dmitrijs2005/skillhub/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
