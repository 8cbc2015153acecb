package dto

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

type CreateBookingRequest struct {
	PropertyID      uint   `json:"property_id" validate:"required"`
	PaymentMethodID uint   `json:"payment_method_id" validate:"required"`
	CheckInDate     string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOutDate    string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	NumberGuests    int    `json:"number_guests" validate:"gte=1"`
}

type RatingRequest struct {
	Rating int `json:"rating" validate:"gte=1,lte=5"`
}
