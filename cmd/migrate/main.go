package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"dulce-kart/internal/config"
	"dulce-kart/internal/database"
)

func main() {
	cmd := flag.String("cmd", database.CommandUp, "migration command: up|down|status|version|check")
	flag.Parse()

	if err := run(*cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger).With().Str("tool", "migrate").Logger()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// check only verifies connectivity
	if cmd == "check" {
		var name string
		if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&name); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("Successfully connected to database: %s\n", name)
		return nil
	}

	return database.Run(ctx, pool, cmd, logger)
}
