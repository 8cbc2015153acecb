package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/repositories"
	"rentals-api/validation"
)

const UnavailableDatesMessage = "Property is not available for the selected dates"

// ErrDatesTaken is returned when a stay overlaps an existing booking.
var ErrDatesTaken = fmt.Errorf("%w: %s", domain.ErrConflict, UnavailableDatesMessage)

// BookingService holds the reservation rules.
type BookingService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateBookingRequest) (*domain.Booking, error)
	GetByID(ctx context.Context, actor Actor, id uint) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID uint) ([]domain.Booking, error)
	Rate(ctx context.Context, actor Actor, id uint, req dto.RatingRequest) (*domain.Booking, bool, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type bookingService struct {
	bookings       repositories.BookingRepository
	properties     repositories.PropertyRepository
	paymentMethods repositories.CatalogRepository[domain.PaymentMethod]
	home           Invalidator
	validate       *validation.Validator
	now            Clock
}

func NewBookingService(
	bookings repositories.BookingRepository,
	properties repositories.PropertyRepository,
	paymentMethods repositories.CatalogRepository[domain.PaymentMethod],
	home Invalidator,
	validate *validation.Validator,
) BookingService {
	if home == nil {
		home = noopInvalidator{}
	}
	return &bookingService{
		bookings:       bookings,
		properties:     properties,
		paymentMethods: paymentMethods,
		home:           home,
		validate:       validate,
		now:            time.Now,
	}
}

// Create books a stay for the actor. Dates are calendar days: check-in must
// be after today and check-out after check-in. The price is the nightly rate
// times the number of nights.
func (s *bookingService) Create(ctx context.Context, actor Actor, req dto.CreateBookingRequest) (*domain.Booking, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	// 1. Dates: the layout was checked by the validator, so parsing cannot fail
	checkIn, _ := time.Parse(dto.DateLayout, req.CheckInDate)
	checkOut, _ := time.Parse(dto.DateLayout, req.CheckOutDate)
	bookedOn := today(s.now())

	verr := &domain.ValidationError{}
	if !checkIn.After(bookedOn) {
		verr.Add("check_in_date", "Check-in date must be after today")
	}
	if !checkOut.After(checkIn) {
		verr.Add("check_out_date", "Check-out date must be after check-in date")
	}
	if !verr.Empty() {
		return nil, verr
	}

	// 2. Property rules, all collected into one answer
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != domain.PropertyStatusAvailable {
		verr.Add("property_id", "Property is not open for bookings yet")
	}
	if property.OwnerID == actor.UserID {
		verr.Add("property_id", "You cannot book your own property")
	}
	if req.NumberGuests > property.NumberGuestsAllowed {
		verr.Add("number_guests", fmt.Sprintf("Number of guests exceeds the %d allowed", property.NumberGuestsAllowed))
	}
	if _, err := s.paymentMethods.GetByID(ctx, req.PaymentMethodID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		verr.Add("payment_method_id", fmt.Sprintf("Payment method with id %d does not exist", req.PaymentMethodID))
	}
	if !verr.Empty() {
		return nil, verr
	}

	// 3. Price it: nights times the nightly price
	booking := &domain.Booking{
		PropertyID:      property.ID,
		GuestID:         actor.UserID,
		PaymentMethodID: req.PaymentMethodID,
		BookingDate:     bookedOn,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberGuests:    req.NumberGuests,
	}
	booking.FinalPrice = float64(booking.Nights()) * property.Price

	// 4. The overlap check and the insert share one transaction
	if err := s.bookings.CreateIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrDatesTaken
		}
		return nil, err
	}

	s.home.Invalidate()
	// reload so the response carries the property and payment method
	return s.bookings.GetByID(ctx, booking.ID)
}

// GetByID is visible to the guest, the property owner and administrators.
func (s *bookingService) GetByID(ctx context.Context, actor Actor, id uint) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Admin || booking.GuestID == actor.UserID {
		return booking, nil
	}
	if booking.Property != nil && booking.Property.OwnerID == actor.UserID {
		return booking, nil
	}
	return nil, domain.ErrForbidden
}

func (s *bookingService) ListByGuest(ctx context.Context, guestID uint) ([]domain.Booking, error) {
	return s.bookings.ListByGuest(ctx, guestID)
}

// Rate stores the guest's 1 to 5 rating once the stay is over.
func (s *bookingService) Rate(ctx context.Context, actor Actor, id uint, req dto.RatingRequest) (*domain.Booking, bool, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, false, err
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	// only the guest rates, and only once the stay is over
	if booking.GuestID != actor.UserID {
		return nil, false, domain.ErrForbidden
	}
	if booking.CheckOutDate.After(today(s.now())) {
		return nil, false, domain.NewValidationError("rating", "Bookings can only be rated after check-out")
	}
	if booking.Rating != nil && *booking.Rating == req.Rating {
		return booking, false, nil
	}

	if err := s.bookings.SetRating(ctx, id, req.Rating); err != nil {
		return nil, false, err
	}
	booking.Rating = &req.Rating
	s.home.Invalidate()
	return booking, true, nil
}

// Delete cancels a booking; only its guest or an administrator may do so.
func (s *bookingService) Delete(ctx context.Context, actor Actor, id uint) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(booking.GuestID) {
		return domain.ErrForbidden
	}

	n, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.NewNotFound("Booking", id)
	}
	s.home.Invalidate()
	return nil
}
