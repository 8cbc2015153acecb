package domain

import "time"

// Booking is a stay of a guest in a property. CheckInDate is strictly after
// BookingDate and CheckOutDate strictly after CheckInDate.
type Booking struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	PropertyID      uint           `gorm:"not null;index" json:"property_id"`
	Property        *Property      `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
	GuestID         uint           `gorm:"not null;index" json:"guest_id"`
	Guest           *User          `gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE" json:"guest,omitempty"`
	PaymentMethodID uint           `gorm:"not null;index" json:"payment_method_id"`
	PaymentMethod   *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
	BookingDate     time.Time      `gorm:"not null" json:"booking_date"`
	CheckInDate     time.Time      `gorm:"not null" json:"check_in_date"`
	CheckOutDate    time.Time      `gorm:"not null" json:"check_out_date"`
	NumberGuests    int            `gorm:"not null" json:"number_guests"`
	FinalPrice      float64        `gorm:"not null" json:"final_price"`
	Rating          *int           `json:"rating"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Nights returns the number of nights between check-in and check-out.
func (b *Booking) Nights() int {
	return int(b.CheckOutDate.Sub(b.CheckInDate).Hours() / 24)
}
