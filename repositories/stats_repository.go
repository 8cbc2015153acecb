package repositories

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"

	"rentals-api/domain"
)

const (
	topDestinations = 3
	topProperties   = 6
)

// StatsRepository computes the read-only figures of the home page.
type StatsRepository interface {
	Home(ctx context.Context) (*domain.HomeStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Home(ctx context.Context) (*domain.HomeStats, error) {
	db := r.db.WithContext(ctx)
	stats := &domain.HomeStats{TopDestinations: []domain.DestinationStat{}}

	if err := db.Model(&domain.Property{}).
		Where("status = ?", domain.PropertyStatusAvailable).
		Count(&stats.AvailableProperties).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Booking{}).Count(&stats.Bookings).Error; err != nil {
		return nil, err
	}

	var ratings struct {
		Count   int64
		Average sql.NullFloat64
	}
	if err := db.Model(&domain.Booking{}).
		Select("COUNT(rating) AS count, AVG(rating) AS average").
		Where("rating IS NOT NULL").
		Scan(&ratings).Error; err != nil {
		return nil, err
	}
	stats.Ratings = ratings.Count
	stats.AverageRating = ratings.Average.Float64

	if err := db.Model(&domain.User{}).
		Where("type <> ?", domain.UserTypeAdmin).
		Count(&stats.Users).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT p.city, p.country, COUNT(b.id) AS bookings, COALESCE(AVG(b.rating), 0) AS average_rating
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		GROUP BY p.city, p.country
		ORDER BY bookings DESC, average_rating DESC
		LIMIT ?`, topDestinations).
		Scan(&stats.TopDestinations).Error; err != nil {
		return nil, err
	}

	top, err := r.topProperties(db)
	if err != nil {
		return nil, err
	}
	stats.TopProperties = top

	return stats, nil
}

type propertyStatRow struct {
	ID            uint
	Title         string
	City          string
	Country       string
	Price         float64
	Typology      string
	Bookings      int64
	AverageRating float64
	Photos        sql.NullString
}

// topProperties ranks available listings by bookings then rating. Booking
// figures come from a derived table so the photo aggregate cannot inflate them.
func (r *statsRepository) topProperties(db *gorm.DB) ([]domain.PropertyStat, error) {
	var rows []propertyStatRow
	err := db.Raw(`
		SELECT p.id, p.title, p.city, p.country, p.price, p.typology,
			COALESCE(bs.bookings, 0) AS bookings,
			COALESCE(bs.average_rating, 0) AS average_rating,
			(SELECT `+photoAggregate(db)+` FROM photos ph WHERE ph.property_id = p.id) AS photos
		FROM properties p
		LEFT JOIN (
			SELECT property_id, COUNT(*) AS bookings, AVG(rating) AS average_rating
			FROM bookings
			GROUP BY property_id
		) bs ON bs.property_id = p.id
		WHERE p.status = ?
		ORDER BY bookings DESC, average_rating DESC, p.id ASC
		LIMIT ?`, domain.PropertyStatusAvailable, topProperties).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.PropertyStat, 0, len(rows))
	for _, row := range rows {
		stat := domain.PropertyStat{
			ID:            row.ID,
			Title:         row.Title,
			City:          row.City,
			Country:       row.Country,
			Price:         row.Price,
			Typology:      row.Typology,
			Bookings:      row.Bookings,
			AverageRating: row.AverageRating,
			Photos:        []string{},
		}
		if row.Photos.Valid && row.Photos.String != "" {
			stat.Photos = strings.Split(row.Photos.String, ",")
		}
		out = append(out, stat)
	}
	return out, nil
}

// photoAggregate returns the dialect's string aggregate over ph.url.
func photoAggregate(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "STRING_AGG(ph.url, ',')"
	}
	return "GROUP_CONCAT(ph.url)"
}
