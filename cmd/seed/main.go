// Command main runs the database seeder for pennypost.
package main

import (
	"flag"
	"log"

	"pennypost/internal/config"
	"pennypost/internal/database"
	"pennypost/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numComments := flag.Int("comments", 400, "Number of comments to create")
	numLikes := flag.Int("likes", 600, "Number of likes to attempt")
	grant := flag.Int64("grant", 100, "Starting penny grant per seeded user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d comments, %d likes, clean=%v\n",
		*numUsers, *numPosts, *numComments, *numLikes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(seed.Options{
		NumUsers:      *numUsers,
		NumPosts:      *numPosts,
		NumComments:   *numComments,
		NumLikes:      *numLikes,
		StartingGrant: *grant,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
