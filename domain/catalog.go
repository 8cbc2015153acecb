package domain

// Facility is an amenity that can be attached to many properties.
type Facility struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (Facility) TableName() string {
	return "facilities"
}

// PaymentMethod is referenced by bookings.
type PaymentMethod struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
