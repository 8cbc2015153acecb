package repositories

import (
	"context"

	"gorm.io/gorm"

	"rentals-api/domain"
	"rentals-api/filters"
)

// PropertyRepository is the persistence contract for listings.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id uint) (*domain.Property, error)
	List(ctx context.Context, spec *filters.Spec) ([]domain.Property, int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Property, error)
	Update(ctx context.Context, property *domain.Property) error
	ReplaceFacilities(ctx context.Context, property *domain.Property, facilities []domain.Facility) error
	Delete(ctx context.Context, id uint) (int64, error)
	AddPhotos(ctx context.Context, photos []domain.Photo) error
}

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// Create inserts the property and links its facilities, which must exist.
// The owner's host_since is set on their first listing.
func (r *propertyRepository) Create(ctx context.Context, property *domain.Property) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Owner", "Facilities.*").Create(property).Error; err != nil {
			return translate(err)
		}
		return tx.Model(&domain.User{}).
			Where("id = ? AND host_since IS NULL", property.OwnerID).
			Update("host_since", property.CreatedAt).Error
	})
}

func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*domain.Property, error) {
	var property domain.Property
	err := r.db.WithContext(ctx).
		Preload("Facilities").
		Preload("Photos").
		First(&property, id).Error
	if err != nil {
		return nil, notFound(err, "Property", id)
	}
	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, spec *filters.Spec) ([]domain.Property, int64, error) {
	var total int64
	if err := spec.Where(r.db.WithContext(ctx).Model(&domain.Property{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var properties []domain.Property
	err := spec.Apply(r.db.WithContext(ctx).Model(&domain.Property{})).
		Preload("Photos").
		Find(&properties).Error
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *propertyRepository) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Photos").
		Order("id").
		Find(&properties).Error
	return properties, err
}

// Update writes the scalar columns only; associations have their own methods.
func (r *propertyRepository) Update(ctx context.Context, property *domain.Property) error {
	return translate(r.db.WithContext(ctx).
		Omit(propertyAssociations...).
		Save(property).Error)
}

func (r *propertyRepository) ReplaceFacilities(ctx context.Context, property *domain.Property, facilities []domain.Facility) error {
	return r.db.WithContext(ctx).Model(property).Association("Facilities").Replace(facilities)
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM property_facilities WHERE property_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Property{}, id)
		affected = res.RowsAffected
		return translate(res.Error)
	})
	return affected, err
}

func (r *propertyRepository) AddPhotos(ctx context.Context, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&photos).Error
}

var propertyAssociations = []string{"Owner", "Facilities", "Photos"}
