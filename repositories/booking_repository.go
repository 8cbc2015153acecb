package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentals-api/domain"
)

// BookingRepository is the persistence contract for stays.
type BookingRepository interface {
	// CreateIfAvailable inserts booking unless it overlaps another stay of
	// the same property, in which case it returns domain.ErrConflict.
	CreateIfAvailable(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uint) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID uint) ([]domain.Booking, error)
	SetRating(ctx context.Context, id uint, rating int) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreateIfAvailable(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the property row so concurrent bookings of it serialize;
		// sqlite ignores the locking clause and serializes writers anyway
		var property domain.Property
		q := tx.Select("id")
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&property, booking.PropertyID).Error; err != nil {
			return notFound(err, "Property", booking.PropertyID)
		}

		overlap, err := overlaps(tx, booking.PropertyID, booking.CheckInDate, booking.CheckOutDate)
		if err != nil {
			return err
		}
		if overlap {
			return domain.ErrConflict
		}

		return translate(tx.Omit("Property", "Guest", "PaymentMethod").Create(booking).Error)
	})
}

// overlaps reports whether a stay of property intersects [checkIn, checkOut).
func overlaps(tx *gorm.DB, propertyID uint, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := tx.Model(&domain.Booking{}).
		Where("property_id = ? AND check_in_date < ? AND check_out_date > ?", propertyID, checkOut, checkIn).
		Count(&count).Error
	return count > 0, err
}

func (r *bookingRepository) GetByID(ctx context.Context, id uint) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("PaymentMethod").
		First(&booking, id).Error
	if err != nil {
		return nil, notFound(err, "Booking", id)
	}
	return &booking, nil
}

func (r *bookingRepository) ListByGuest(ctx context.Context, guestID uint) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Preload("Property").
		Preload("PaymentMethod").
		Order("check_in_date DESC").
		Find(&bookings).Error
	return bookings, err
}

// SetRating stores rating on booking id. Callers check that the booking
// exists; MySQL reports zero affected rows when the value is unchanged, so
// the row count cannot tell a missing booking apart from a repeated rating.
func (r *bookingRepository) SetRating(ctx context.Context, id uint, rating int) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).Where("id = ?", id).Update("rating", rating).Error
}

func (r *bookingRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Booking{}, id)
	return res.RowsAffected, translate(res.Error)
}
