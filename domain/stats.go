package domain

// HomeStats is the read model behind GET /home.
type HomeStats struct {
	AvailableProperties int64             `json:"available_properties"`
	Bookings            int64             `json:"bookings"`
	Ratings             int64             `json:"ratings"`
	AverageRating       float64           `json:"average_rating"`
	Users               int64             `json:"users"`
	TopDestinations     []DestinationStat `json:"top_destinations"`
	TopProperties       []PropertyStat    `json:"top_properties"`
}

type DestinationStat struct {
	City          string  `json:"city"`
	Country       string  `json:"country"`
	Bookings      int64   `json:"bookings"`
	AverageRating float64 `json:"average_rating"`
}

type PropertyStat struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Price         float64  `json:"price"`
	Typology      string   `json:"typology"`
	Bookings      int64    `json:"bookings"`
	AverageRating float64  `json:"average_rating"`
	Photos        []string `json:"photos"`
}
