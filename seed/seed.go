// Package seed populates a development database with plausible marketplace
// data: seekers, donors, listings, matches, and ratings.
package seed

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/techieroshan/studentsupport/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var dietaryTags = []string{
	"vegetarian", "vegan", "halal", "kosher", "gluten-free", "dairy-free",
	"nut-free", "low-sodium",
}

var medicalTags = []string{
	"diabetic-friendly", "low-sugar", "soft-foods", "allergy-aware",
}

var frequencies = []string{"ONE_TIME", "WEEKLY", "DAILY"}

var requestDescriptions = []string{
	"Finals week has me stretched thin and my meal plan ran out early. Any warm dinner would help.",
	"Between two part-time jobs and classes, I can't always afford groceries this month.",
	"New to the city for grad school, still waiting on my first stipend check.",
	"My roommate and I are sharing costs but we're short this week. Anything helps.",
	"Recovering from surgery and can't cook for myself right now.",
}

var offerDescriptions = []string{
	"Home-cooked pasta bake, enough for two. Can portion into containers.",
	"Extra trays from our restaurant's catering order, refrigerated and sealed.",
	"I cook big batches every Sunday and always have leftovers to share.",
	"Fresh produce box from our community garden plus some prepared soups.",
	"Weekly meal prep surplus: rice bowls with chicken or tofu.",
}

var partnerSeeds = []models.DonorPartner{
	{Name: "Hearth & Table Bistro", Category: "Restaurant", Tier: "GOLD", TotalContributionDisplay: "500+ meals", Since: "2023", IsRecurring: true, Location: "Fort Worth, TX"},
	{Name: "Campus Corner Grocery", Category: "Grocery", Tier: "SILVER", TotalContributionDisplay: "200+ meals", Since: "2024", IsRecurring: true, Location: "Fort Worth, TX"},
	{Name: "", Category: "Individual", Tier: "BRONZE", TotalContributionDisplay: "75 meals", Since: "2024", IsAnonymous: true, AnonymousName: "A Friendly Neighbor"},
}

// Seeder drives deterministic-ish development fixtures.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a seeder over the given connection.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes existing marketplace data, children first.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{
		"messages", "chat_threads", "ratings", "flagged_contents",
		"meal_requests", "meal_offers", "verification_codes",
		"donor_partners", "users",
	}
	for _, t := range tables {
		if err := s.db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", t, err)
		}
	}
	return nil
}

// SeedUsers creates one admin plus a mix of seekers and donors. Every user
// gets the password "password123!A".
func (s *Seeder) SeedUsers(seekers, donors int) ([]*models.User, []*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123!A"), bcrypt.DefaultCost)

	admin := &models.User{
		Email:              "admin@example.com",
		PasswordHash:       string(hashed),
		Role:               models.RoleAdmin,
		DisplayName:        "Site Admin",
		City:               "Fort Worth",
		State:              "TX",
		Zip:                "76131",
		EmailVerified:      true,
		VerificationStatus: models.VerificationVerified,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, nil, err
	}

	makeUser := func(role models.UserRole, i int) (*models.User, error) {
		addr := gofakeit.Address()
		u := &models.User{
			Email:              fmt.Sprintf("%s%d@example.com", gofakeit.Username(), i),
			PasswordHash:       string(hashed),
			Role:               role,
			DisplayName:        gofakeit.Name(),
			AvatarID:           s.r.Intn(12) + 1,
			Phone:              gofakeit.Phone(),
			City:               addr.City,
			State:              addr.State,
			Zip:                addr.Zip,
			EmailVerified:      true,
			VerificationStatus: models.VerificationVerified,
		}
		if role == models.RoleDonor {
			limit := s.r.Intn(8) + 2
			u.WeeklyMealLimit = &limit
			u.IsAnonymous = s.r.Float32() < 0.2
		}
		return u, s.db.Create(u).Error
	}

	seekerUsers := make([]*models.User, 0, seekers)
	for i := 0; i < seekers; i++ {
		u, err := makeUser(models.RoleSeeker, i)
		if err != nil {
			return nil, nil, err
		}
		seekerUsers = append(seekerUsers, u)
	}

	donorUsers := make([]*models.User, 0, donors)
	for i := 0; i < donors; i++ {
		u, err := makeUser(models.RoleDonor, seekers+i)
		if err != nil {
			return nil, nil, err
		}
		donorUsers = append(donorUsers, u)
	}

	return seekerUsers, donorUsers, nil
}

func (s *Seeder) randomTags(pool []string, max int) json.RawMessage {
	n := s.r.Intn(max + 1)
	picked := make([]string, 0, n)
	for _, idx := range s.r.Perm(len(pool))[:n] {
		picked = append(picked, pool[idx])
	}
	b, _ := json.Marshal(picked)
	return b
}

// SeedListings creates requests for seekers and offers for donors.
func (s *Seeder) SeedListings(seekers, donors []*models.User) ([]*models.MealRequest, []*models.MealOffer, error) {
	var requests []*models.MealRequest
	for _, seeker := range seekers {
		for i := 0; i < s.r.Intn(2)+1; i++ {
			req := &models.MealRequest{
				SeekerID:     seeker.ID,
				City:         seeker.City,
				State:        seeker.State,
				Zip:          seeker.Zip,
				Country:      seeker.Country,
				DietaryNeeds: s.randomTags(dietaryTags, 3),
				MedicalNeeds: s.randomTags(medicalTags, 1),
				Description:  requestDescriptions[s.r.Intn(len(requestDescriptions))],
				Availability: "Weekday evenings",
				Frequency:    frequencies[s.r.Intn(len(frequencies))],
				Urgency:      "NORMAL",
				Status:       models.RequestStatusOpen,
			}
			if s.r.Float32() < 0.15 {
				req.Urgency = "URGENT"
			}
			if err := s.db.Create(req).Error; err != nil {
				return nil, nil, err
			}
			requests = append(requests, req)
		}
	}

	var offers []*models.MealOffer
	for _, donor := range donors {
		for i := 0; i < s.r.Intn(2)+1; i++ {
			offer := &models.MealOffer{
				DonorID:        donor.ID,
				City:           donor.City,
				State:          donor.State,
				Zip:            donor.Zip,
				Country:        donor.Country,
				Description:    offerDescriptions[s.r.Intn(len(offerDescriptions))],
				DietaryTags:    s.randomTags(dietaryTags, 3),
				MedicalTags:    s.randomTags(medicalTags, 1),
				Availability:   "Weekends",
				Frequency:      frequencies[s.r.Intn(len(frequencies))],
				AvailableUntil: time.Now().AddDate(0, 0, s.r.Intn(14)+1),
				IsAnonymous:    donor.IsAnonymous,
				Status:         models.OfferStatusAvailable,
			}
			if err := s.db.Create(offer).Error; err != nil {
				return nil, nil, err
			}
			offers = append(offers, offer)
		}
	}

	return requests, offers, nil
}

// SeedMatches walks a few offers through the full handshake so the dev
// environment has completed transactions and ratings to look at.
func (s *Seeder) SeedMatches(seekers []*models.User, offers []*models.MealOffer) (int, error) {
	if len(seekers) == 0 {
		return 0, nil
	}

	completed := 0
	for i, offer := range offers {
		if i%3 != 0 {
			continue
		}
		seeker := seekers[s.r.Intn(len(seekers))]

		pin := fmt.Sprintf("%04d", s.r.Intn(9000)+1000)
		offer.Status = models.OfferStatusClaimed
		offer.CompletionPIN = nil
		if err := s.db.Save(offer).Error; err != nil {
			return completed, err
		}

		offerID := offer.ID
		thread := &models.ChatThread{
			ItemType:  models.ItemTypeOffer,
			ItemID:    offer.ID,
			OfferID:   &offerID,
			StudentID: seeker.ID,
			DonorID:   offer.DonorID,
			Status:    models.ThreadStatusCompleted,
		}
		if err := s.db.Create(thread).Error; err != nil {
			return completed, err
		}

		messages := []models.Message{
			{ThreadID: thread.ID, SenderID: seeker.ID, Text: "Hi! Is this still available?"},
			{ThreadID: thread.ID, SenderID: offer.DonorID, Text: "Yes! I can meet at the student center around 6."},
			{ThreadID: thread.ID, SenderID: seeker.ID, Text: fmt.Sprintf("Perfect, see you then. PIN is %s.", pin), IsSystem: false},
		}
		for i := range messages {
			if err := s.db.Create(&messages[i]).Error; err != nil {
				return completed, err
			}
		}

		rating := &models.Rating{
			FromUserID:    seeker.ID,
			ToUserID:      offer.DonorID,
			TransactionID: offer.ID,
			Stars:         s.r.Intn(2) + 4,
			Comment:       "Kind, punctual, and the food was great. Thank you!",
			IsPublic:      true,
		}
		if err := s.db.Create(rating).Error; err != nil {
			return completed, err
		}
		completed++
	}

	return completed, nil
}

// SeedPartners loads the donor-partner directory.
func (s *Seeder) SeedPartners() (int, error) {
	for i := range partnerSeeds {
		p := partnerSeeds[i]
		if err := s.db.Create(&p).Error; err != nil {
			return i, err
		}
	}
	return len(partnerSeeds), nil
}
