package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/techieroshan/studentsupport/database"
	"github.com/techieroshan/studentsupport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func makeUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email: email, PasswordHash: "x", Role: role, DisplayName: "Test",
		City: "Fort Worth", State: "TX", Zip: "76131",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestUserGetByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	makeUser(t, db, models.RoleSeeker, "known@example.com")

	u, err := repo.GetByEmail(ctx, "known@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	// Unknown email is (nil, nil), not an error.
	u, err = repo.GetByEmail(ctx, "unknown@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindThreadReturnsNilWhenAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	thread, err := repo.FindThread(ctx, models.ItemTypeOffer, "item", "student", "donor")
	require.NoError(t, err)
	assert.Nil(t, thread)

	thread, err = repo.FindThreadByItem(ctx, "item")
	require.NoError(t, err)
	assert.Nil(t, thread)
}

func TestOfferDietFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferRepository(db)
	ctx := context.Background()
	donor := makeUser(t, db, models.RoleDonor, "donor@example.com")

	mk := func(tags []string) {
		b, _ := json.Marshal(tags)
		offer := &models.MealOffer{
			DonorID: donor.ID, City: "Fort Worth", State: "TX", Zip: "76131",
			Description: "meal", Frequency: "ONE_TIME",
			AvailableUntil: time.Now().AddDate(0, 0, 7),
			DietaryTags:    b, Status: models.OfferStatusAvailable,
		}
		require.NoError(t, db.Create(offer).Error)
	}
	mk([]string{"vegan", "gluten-free"})
	mk([]string{"halal"})
	mk(nil)

	offers, err := repo.List(ctx, ListingFilter{Diet: "vegan"})
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	offers, err = repo.List(ctx, ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, offers, 3)
}

func TestCountByDonorSince(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOfferRepository(db)
	ctx := context.Background()
	donor := makeUser(t, db, models.RoleDonor, "count@example.com")

	for i := 0; i < 3; i++ {
		offer := &models.MealOffer{
			DonorID: donor.ID, City: "Fort Worth", State: "TX", Zip: "76131",
			Description: "meal", Frequency: "ONE_TIME",
			AvailableUntil: time.Now().AddDate(0, 0, 7),
			Status:         models.OfferStatusAvailable,
		}
		require.NoError(t, db.Create(offer).Error)
	}

	// Age one offer outside the window.
	var oldest models.MealOffer
	require.NoError(t, db.First(&oldest, "donor_id = ?", donor.ID).Error)
	require.NoError(t, db.Model(&oldest).Update("created_at", time.Now().AddDate(0, 0, -8)).Error)

	count, err := repo.CountByDonorSince(ctx, donor.ID, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestFlagFindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFlagRepository(db)
	ctx := context.Background()

	flag := &models.FlaggedContent{
		ItemID: "item-1", ItemType: models.ItemTypeRequest,
		Reason: "SPAM", FlaggedBy: "user-1",
	}
	require.NoError(t, repo.Create(ctx, flag))

	found, err := repo.FindActive(ctx, "item-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	// A dismissed flag no longer blocks re-flagging.
	found.Dismissed = true
	require.NoError(t, repo.Update(ctx, found))

	found, err = repo.FindActive(ctx, "item-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, found)
}
