// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"dogpark/internal/bootstrap"
	"dogpark/internal/config"
	"dogpark/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(ctx, rt.DB); err != nil {
			return err
		}
		if err := bootstrap.EnsureOwnerAdmin(ctx, rt.DB, cfg.OwnerOpenID); err != nil {
			return err
		}
		log.Println("schema migrated")
	case "status":
		tables, err := database.SchemaStatus(ctx, rt.DB)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		for _, t := range tables {
			state := "present"
			if !t.Exists {
				state = "missing"
			}
			log.Printf("%-12s %s", t.Table, state)
		}
	default:
		return usage()
	}
	return nil
}
