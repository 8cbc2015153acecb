package repositories_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rentals-api/database"
	"rentals-api/domain"
	"rentals-api/filters"
	"rentals-api/internal/dbtest"
	"rentals-api/logging"
	"rentals-api/repositories"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newUser(t *testing.T, db *gorm.DB, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email, Password: "hash", Verified: true}
	require.NoError(t, repositories.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func newProperty(t *testing.T, db *gorm.DB, ownerID uint, city string, status domain.PropertyStatus) *domain.Property {
	t.Helper()
	p := &domain.Property{
		OwnerID: ownerID, Title: "Flat in " + city, City: city, Country: "Portugal",
		NumberBeds: 2, NumberBedrooms: 1, NumberBathrooms: 1, NumberGuestsAllowed: 3,
		Price: 80, Typology: "apartment", Status: status,
	}
	require.NoError(t, repositories.NewPropertyRepository(db).Create(context.Background(), p))
	return p
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := repositories.NewUserRepository(db)

	ana := newUser(t, db, "Ana", "ana@example.com")

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)
	assert.Equal(t, domain.UserTypeUser, got.Type)

	taken, err := repo.EmailTaken(ctx, "ana@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.EmailTaken(ctx, "ana@example.com", ana.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	err = repo.Create(ctx, &domain.User{Name: "Other", Email: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "User with id 999 not found")

	n, err := repo.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repo.Delete(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := repositories.NewUserRepository(db)
	for _, name := range []string{"Ana", "Bruno", "Carla", "Diana", "Eva", "Filipa", "Gil"} {
		newUser(t, db, name, name+"@example.com")
	}

	spec, err := filters.UserSpec(url.Values{"limit": {"6"}, "page": {"2"}})
	require.NoError(t, err)
	users, total, err := repo.List(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Gil", users[0].Name)

	spec, err = filters.UserSpec(url.Values{"name": {"zzz"}})
	require.NoError(t, err)
	users, total, err = repo.List(ctx, spec)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
}

func TestPropertyRepository_CreateSetsHostSince(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	require.NoError(t, database.Seed(db))
	owner := newUser(t, db, "Owner", "owner@example.com")

	facilities, err := repositories.NewFacilityRepository(db).FindByIDs(ctx, []uint{1, 2})
	require.NoError(t, err)
	require.Len(t, facilities, 2)

	repo := repositories.NewPropertyRepository(db)
	p := &domain.Property{
		OwnerID: owner.ID, Title: "Loft", City: "Lisbon", Country: "Portugal",
		NumberBeds: 1, NumberBathrooms: 1, NumberGuestsAllowed: 2, Price: 60, Typology: "studio",
		Facilities: facilities,
	}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PropertyStatusPending, got.Status)
	assert.Len(t, got.Facilities, 2)

	reloaded, err := repositories.NewUserRepository(db).GetByID(ctx, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.HostSince)

	require.NoError(t, repo.AddPhotos(ctx, []domain.Photo{{PropertyID: p.ID, URL: "https://img/1.jpg"}}))
	require.NoError(t, repo.ReplaceFacilities(ctx, got, facilities[:1]))

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Facilities, 1)
	assert.Len(t, got.Photos, 1)

	n, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepository_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	require.NoError(t, database.Seed(db))
	owner := newUser(t, db, "Owner", "owner@example.com")
	guest := newUser(t, db, "Guest", "guest@example.com")
	p := newProperty(t, db, owner.ID, "Porto", domain.PropertyStatusAvailable)
	repo := repositories.NewBookingRepository(db)

	book := func(in, out string) error {
		return repo.CreateIfAvailable(ctx, &domain.Booking{
			PropertyID: p.ID, GuestID: guest.ID, PaymentMethodID: 1,
			BookingDate: day("2030-01-01"), CheckInDate: day(in), CheckOutDate: day(out),
			NumberGuests: 2, FinalPrice: 160,
		})
	}

	require.NoError(t, book("2030-02-10", "2030-02-12"))
	assert.ErrorIs(t, book("2030-02-11", "2030-02-13"), domain.ErrConflict)
	assert.ErrorIs(t, book("2030-02-08", "2030-02-15"), domain.ErrConflict)
	// check-out day is free for the next guest
	assert.NoError(t, book("2030-02-12", "2030-02-14"))
	assert.NoError(t, book("2030-02-05", "2030-02-10"))

	bookings, err := repo.ListByGuest(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Equal(t, "Flat in Porto", bookings[0].Property.Title)

	require.NoError(t, repo.SetRating(ctx, bookings[0].ID, 4))
	b, err := repo.GetByID(ctx, bookings[0].ID)
	require.NoError(t, err)
	require.NotNil(t, b.Rating)
	assert.Equal(t, 4, *b.Rating)

	// repeating a rating is not an error
	assert.NoError(t, repo.SetRating(ctx, bookings[0].ID, 4))
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := repositories.NewPaymentMethodRepository(db)

	require.NoError(t, repo.Create(ctx, &domain.PaymentMethod{Name: "MB Way"}))
	taken, err := repo.NameTaken(ctx, "mb way")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.ErrorIs(t, repo.Create(ctx, &domain.PaymentMethod{Name: "MB Way"}), domain.ErrDuplicate)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = repo.GetByID(ctx, 42)
	assert.EqualError(t, err, "Payment method with id 42 not found")

	n, err := repo.Delete(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestVerificationRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	u := newUser(t, db, "Ana", "ana@example.com")
	repo := repositories.NewVerificationRepository(db)
	now := time.Now()

	require.NoError(t, repo.ReplaceOTP(ctx, &domain.OTP{UserID: u.ID, Code: "111111", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, repo.ReplaceOTP(ctx, &domain.OTP{UserID: u.ID, Code: "222222", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))

	_, err := repo.FindOTP(ctx, u.ID, "111111")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	otp, err := repo.FindOTP(ctx, u.ID, "222222")
	require.NoError(t, err)
	assert.False(t, otp.Expired(now))

	require.NoError(t, repo.ReplaceResetToken(ctx, &domain.PasswordResetToken{UserID: u.ID, Token: "tok", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	tok, err := repo.FindResetToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, u.ID, tok.UserID)
	require.NoError(t, repo.DeleteResetTokens(ctx, u.ID))
	_, err = repo.FindResetToken(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsRepository_Home(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	require.NoError(t, database.Seed(db))
	owner := newUser(t, db, "Owner", "owner@example.com")
	guest := newUser(t, db, "Guest", "guest@example.com")
	require.NoError(t, db.Create(&domain.User{Name: "Root", Email: "root@example.com", Password: "x", Type: domain.UserTypeAdmin}).Error)

	lisbon := newProperty(t, db, owner.ID, "Lisbon", domain.PropertyStatusAvailable)
	porto := newProperty(t, db, owner.ID, "Porto", domain.PropertyStatusAvailable)
	newProperty(t, db, owner.ID, "Faro", domain.PropertyStatusPending)

	propRepo := repositories.NewPropertyRepository(db)
	require.NoError(t, propRepo.AddPhotos(ctx, []domain.Photo{
		{PropertyID: porto.ID, URL: "https://img/a.jpg"},
		{PropertyID: porto.ID, URL: "https://img/b.jpg"},
	}))

	bookings := repositories.NewBookingRepository(db)
	stays := []struct {
		property uint
		in, out  string
		rating   int
	}{
		{porto.ID, "2030-01-01", "2030-01-03", 5},
		{porto.ID, "2030-01-05", "2030-01-07", 3},
		{lisbon.ID, "2030-01-01", "2030-01-02", 0},
	}
	for _, s := range stays {
		b := &domain.Booking{
			PropertyID: s.property, GuestID: guest.ID, PaymentMethodID: 1,
			BookingDate: day("2029-12-01"), CheckInDate: day(s.in), CheckOutDate: day(s.out),
			NumberGuests: 1, FinalPrice: 80,
		}
		require.NoError(t, bookings.CreateIfAvailable(ctx, b))
		if s.rating > 0 {
			require.NoError(t, bookings.SetRating(ctx, b.ID, s.rating))
		}
	}

	stats, err := repositories.NewStatsRepository(db).Home(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.AvailableProperties)
	assert.Equal(t, int64(3), stats.Bookings)
	assert.Equal(t, int64(2), stats.Ratings)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.Equal(t, int64(2), stats.Users)

	require.Len(t, stats.TopDestinations, 2)
	assert.Equal(t, "Porto", stats.TopDestinations[0].City)
	assert.Equal(t, int64(2), stats.TopDestinations[0].Bookings)

	require.Len(t, stats.TopProperties, 2)
	assert.Equal(t, porto.ID, stats.TopProperties[0].ID)
	assert.Equal(t, int64(2), stats.TopProperties[0].Bookings)
	assert.ElementsMatch(t, []string{"https://img/a.jpg", "https://img/b.jpg"}, stats.TopProperties[0].Photos)
	assert.Empty(t, stats.TopProperties[1].Photos)
}

func TestCacheRepository_LocalOnly(t *testing.T) {
	cache := repositories.NewCacheRepository("", time.Minute, logging.Nop())
	t.Cleanup(cache.Stop)

	_, ok := cache.GetHome("home")
	assert.False(t, ok)

	cache.SetHome("home", &domain.HomeStats{Bookings: 3}, time.Minute)
	got, ok := cache.GetHome("home")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Bookings)

	cache.Delete("home")
	_, ok = cache.GetHome("home")
	assert.False(t, ok)
}
