// Command main runs the database seeder for Dogpark.
package main

import (
	"context"
	"flag"
	"log"

	"dogpark/internal/bootstrap"
	"dogpark/internal/config"
	"dogpark/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxComments := flag.Int("comments", 6, "Maximum comments per post")
	maxLikes := flag.Int("likes", 15, "Maximum likes per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Hash the shared password with the minimum bcrypt cost")
	dryRun := flag.Bool("dry-run", false, "Build fixtures without writing them")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible fixtures")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedBreedTags: !*dryRun})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer rt.Close()

	sum, err := seed.Seed(context.Background(), rt.DB, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		MaxLikes:    *maxLikes,
		ShouldClean: *shouldClean,
		SeedOptions: seed.SeedOptions{
			DryRun:     *dryRun,
			SkipBcrypt: *fast,
			RandSeed:   *randSeed,
		},
	})
	if err != nil {
		log.Printf("❌ Seeding failed: %v", err)
		return
	}

	log.Printf("✨ All done! %d users, %d posts, %d comments, %d likes.", sum.Users, sum.Posts, sum.Comments, sum.Likes)
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
