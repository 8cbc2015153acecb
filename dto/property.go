package dto

type CreatePropertyRequest struct {
	Title               string  `json:"title" validate:"required,min=3,max=150"`
	Description         string  `json:"description" validate:"omitempty,max=5000"`
	Address             string  `json:"address" validate:"required,max=255"`
	City                string  `json:"city" validate:"required,max=100"`
	Country             string  `json:"country" validate:"required,max=100"`
	Latitude            float64 `json:"latitude" validate:"latitude"`
	Longitude           float64 `json:"longitude" validate:"longitude"`
	NumberBeds          int     `json:"number_beds" validate:"gte=1"`
	NumberBedrooms      int     `json:"number_bedrooms" validate:"gte=0"`
	NumberBathrooms     int     `json:"number_bathrooms" validate:"gte=1"`
	NumberGuestsAllowed int     `json:"number_guests_allowed" validate:"gte=1"`
	Price               float64 `json:"price" validate:"gt=0"`
	Typology            string  `json:"typology" validate:"required,oneof=apartment house villa studio cabin room"`
	Facilities          []uint  `json:"facilities" validate:"omitempty,dive,gt=0"`
}

// UpdatePropertyRequest is a partial update; nil fields are left untouched.
// A non-nil Facilities replaces the whole set.
type UpdatePropertyRequest struct {
	Title               *string  `json:"title" validate:"omitnil,notblank,min=3,max=150"`
	Description         *string  `json:"description" validate:"omitnil,max=5000"`
	Address             *string  `json:"address" validate:"omitnil,notblank,max=255"`
	City                *string  `json:"city" validate:"omitnil,notblank,max=100"`
	Country             *string  `json:"country" validate:"omitnil,notblank,max=100"`
	Latitude            *float64 `json:"latitude" validate:"omitnil,latitude"`
	Longitude           *float64 `json:"longitude" validate:"omitnil,longitude"`
	NumberBeds          *int     `json:"number_beds" validate:"omitnil,gte=1"`
	NumberBedrooms      *int     `json:"number_bedrooms" validate:"omitnil,gte=0"`
	NumberBathrooms     *int     `json:"number_bathrooms" validate:"omitnil,gte=1"`
	NumberGuestsAllowed *int     `json:"number_guests_allowed" validate:"omitnil,gte=1"`
	Price               *float64 `json:"price" validate:"omitnil,gt=0"`
	Typology            *string  `json:"typology" validate:"omitnil,oneof=apartment house villa studio cabin room"`
	Facilities          *[]uint  `json:"facilities" validate:"omitnil,dive,gt=0"`
}
