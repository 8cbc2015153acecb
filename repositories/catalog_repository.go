package repositories

import (
	"context"

	"gorm.io/gorm"

	"rentals-api/domain"
)

// CatalogRepository stores a lookup table of named rows such as facilities
// or payment methods.
type CatalogRepository[T domain.Facility | domain.PaymentMethod] interface {
	List(ctx context.Context) ([]T, error)
	FindByIDs(ctx context.Context, ids []uint) ([]T, error)
	GetByID(ctx context.Context, id uint) (*T, error)
	NameTaken(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type catalogRepository[T domain.Facility | domain.PaymentMethod] struct {
	db     *gorm.DB
	entity string
	// runs inside the delete transaction before the row is removed
	beforeDelete func(tx *gorm.DB, id uint) error
}

func NewFacilityRepository(db *gorm.DB) CatalogRepository[domain.Facility] {
	return &catalogRepository[domain.Facility]{
		db:     db,
		entity: "Facility",
		beforeDelete: func(tx *gorm.DB, id uint) error {
			return tx.Exec("DELETE FROM property_facilities WHERE facility_id = ?", id).Error
		},
	}
}

func NewPaymentMethodRepository(db *gorm.DB) CatalogRepository[domain.PaymentMethod] {
	return &catalogRepository[domain.PaymentMethod]{db: db, entity: "Payment method"}
}

func (r *catalogRepository[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := r.db.WithContext(ctx).Order("name").Find(&items).Error
	return items, err
}

func (r *catalogRepository[T]) FindByIDs(ctx context.Context, ids []uint) ([]T, error) {
	var items []T
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&items).Error
	return items, err
}

func (r *catalogRepository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err, r.entity, id)
	}
	return &item, nil
}

func (r *catalogRepository[T]) NameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error
	return count > 0, err
}

func (r *catalogRepository[T]) Create(ctx context.Context, item *T) error {
	return translate(r.db.WithContext(ctx).Create(item).Error)
}

func (r *catalogRepository[T]) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.beforeDelete != nil {
			if err := r.beforeDelete(tx, id); err != nil {
				return err
			}
		}
		res := tx.Delete(new(T), id)
		affected = res.RowsAffected
		return translate(res.Error)
	})
	return affected, err
}
