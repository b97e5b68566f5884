package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/linguabridge/internal/server"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}
