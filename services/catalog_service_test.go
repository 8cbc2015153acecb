package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals-api/database"
	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/internal/dbtest"
	"rentals-api/logging"
	"rentals-api/repositories"
	"rentals-api/validation"
)

func TestFacilityService(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewFacilityService(repositories.NewFacilityRepository(db), validation.New())
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.NameRequest{Name: "  Sauna "})
	require.NoError(t, err)
	assert.Equal(t, "Sauna", created.Name)

	_, err = svc.Create(ctx, dto.NameRequest{Name: "sauna"})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{`Facility "sauna" already exists. Name must be unique`}, ve.Messages())

	_, err = svc.Create(ctx, dto.NameRequest{})
	ve, ok = domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Name is required"}, ve.Messages())

	require.NoError(t, svc.Delete(ctx, created.ID))
	err = svc.Delete(ctx, created.ID)
	assert.EqualError(t, err, "Facility with id 1 not found")
}

func TestPaymentMethodService_InUse(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.Seed(db))
	svc := NewPaymentMethodService(repositories.NewPaymentMethodRepository(db), validation.New())
	ctx := context.Background()

	owner := &domain.User{Name: "O", Email: "o@example.com", Password: "x"}
	guest := &domain.User{Name: "G", Email: "g@example.com", Password: "x"}
	require.NoError(t, db.Create(owner).Error)
	require.NoError(t, db.Create(guest).Error)
	p := &domain.Property{OwnerID: owner.ID, Title: "T", City: "C", Country: "X", NumberBeds: 1, NumberBathrooms: 1, NumberGuestsAllowed: 1, Price: 1, Typology: "room", Status: domain.PropertyStatusAvailable}
	require.NoError(t, db.Create(p).Error)
	day := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.Booking{
		PropertyID: p.ID, GuestID: guest.ID, PaymentMethodID: 1,
		BookingDate: day, CheckInDate: day.AddDate(0, 0, 1), CheckOutDate: day.AddDate(0, 0, 2),
		NumberGuests: 1, FinalPrice: 1,
	}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, 1), domain.ErrInUse)

	methods, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, methods, 3)
}

func TestHomeService_CachesUntilInvalidated(t *testing.T) {
	db := dbtest.Open(t)
	cache := repositories.NewCacheRepository("", time.Minute, logging.Nop())
	t.Cleanup(cache.Stop)
	svc := NewHomeService(repositories.NewStatsRepository(db), cache, time.Minute, logging.Nop())
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Users)

	require.NoError(t, db.Create(&domain.User{Name: "A", Email: "a@example.com", Password: "x"}).Error)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Users, "served from cache")

	svc.Invalidate()
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
}
