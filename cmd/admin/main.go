// Package main provides admin management utilities for Dogpark.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"dogpark/internal/bootstrap"
	"dogpark/internal/config"
	"dogpark/internal/models"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>     - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <user_id>      - Demote admin to user")
		fmt.Println("  go run ./cmd/admin list-admins           - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	ctx := context.Background()
	switch command := os.Args[1]; command {
	case "promote":
		setRole(ctx, rt, models.RoleAdmin)
	case "demote":
		setRole(ctx, rt, models.RoleUser)
	case "list-admins":
		admins, err := bootstrap.ListAdmins(ctx, rt.DB)
		if err != nil {
			log.Printf("Failed to fetch admins: %v", err)
			return
		}
		if len(admins) == 0 {
			fmt.Println("No admins found in the system")
			return
		}
		for _, a := range admins {
			fmt.Printf("  %d\t%s\t%s\n", a.ID, a.Name, a.OpenID)
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
	}
}

func setRole(ctx context.Context, rt *bootstrap.Runtime, role models.Role) {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin %s <user_id>\n", os.Args[1])
		return
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil {
		fmt.Printf("Invalid user ID %q\n", os.Args[2])
		return
	}

	user, changed, err := bootstrap.SetRole(ctx, rt.DB, uint(id), role)
	switch {
	case errors.Is(err, bootstrap.ErrUserNotFound):
		fmt.Printf("User with ID %d not found\n", id)
	case err != nil:
		log.Printf("Database error: %v", err)
	case !changed:
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Name, user.ID, role)
	default:
		fmt.Printf("✅ %s (ID: %d) is now %s\n", user.Name, user.ID, role)
	}
}
