package domain

import "time"

// PropertyStatus tracks the approval state of a listing.
type PropertyStatus string

const (
	PropertyStatusPending   PropertyStatus = "pending"
	PropertyStatusAvailable PropertyStatus = "available"
)

// Typologies lists the structural categories a property can have.
var Typologies = []string{"apartment", "house", "villa", "studio", "cabin", "room"}

// Property is a rental listing owned by a User.
type Property struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	OwnerID             uint           `gorm:"not null;index" json:"owner_id"`
	Owner               *User          `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Title               string         `gorm:"size:150;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description"`
	Address             string         `gorm:"size:255" json:"address"`
	City                string         `gorm:"size:100;not null;index" json:"city"`
	Country             string         `gorm:"size:100;not null;index" json:"country"`
	Latitude            float64        `json:"latitude"`
	Longitude           float64        `json:"longitude"`
	NumberBeds          int            `gorm:"not null" json:"number_beds"`
	NumberBedrooms      int            `gorm:"not null" json:"number_bedrooms"`
	NumberBathrooms     int            `gorm:"not null" json:"number_bathrooms"`
	NumberGuestsAllowed int            `gorm:"not null" json:"number_guests_allowed"`
	Price               float64        `gorm:"not null" json:"price"`
	Typology            string         `gorm:"size:30;not null" json:"typology"`
	Status              PropertyStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Facilities          []Facility     `gorm:"many2many:property_facilities;constraint:OnDelete:CASCADE" json:"facilities,omitempty"`
	Photos              []Photo        `gorm:"constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// Photo is an externally hosted image of a property.
type Photo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Photo) TableName() string {
	return "photos"
}
