// Command seed populates the development database with marketplace fixtures.
package main

import (
	"flag"
	"log"

	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/database"
	"github.com/techieroshan/studentsupport/seed"
)

func main() {
	numSeekers := flag.Int("seekers", 15, "Number of seeker accounts to create")
	numDonors := flag.Int("donors", 10, "Number of donor accounts to create")
	shouldClean := flag.Bool("clean", true, "Clear existing data before seeding")
	flag.Parse()

	cfg := config.LoadConfig()

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

	seekers, donors, err := s.SeedUsers(*numSeekers, *numDonors)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	log.Printf("Created %d seekers, %d donors (+1 admin)", len(seekers), len(donors))

	requests, offers, err := s.SeedListings(seekers, donors)
	if err != nil {
		log.Fatalf("Listing seeding failed: %v", err)
	}
	log.Printf("Created %d requests, %d offers", len(requests), len(offers))

	completed, err := s.SeedMatches(seekers, offers)
	if err != nil {
		log.Fatalf("Match seeding failed: %v", err)
	}
	log.Printf("Completed %d transactions with ratings", completed)

	partners, err := s.SeedPartners()
	if err != nil {
		log.Fatalf("Partner seeding failed: %v", err)
	}
	log.Printf("Created %d donor partners", partners)

	log.Println("Done. Test accounts use the password: password123!A")
}
