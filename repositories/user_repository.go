package repositories

import (
	"context"

	"gorm.io/gorm"

	"rentals-api/domain"
	"rentals-api/filters"
)

// UserRepository is the persistence contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	VATTaken(ctx context.Context, vat string, exceptID uint) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uint) (int64, error)
	List(ctx context.Context, spec *filters.Spec) ([]domain.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, notFound(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return r.taken(ctx, "email", email, exceptID)
}

func (r *userRepository) VATTaken(ctx context.Context, vat string, exceptID uint) (bool, error) {
	return r.taken(ctx, "vat_number", vat, exceptID)
}

// column is one of the two constants above, never request input
func (r *userRepository) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where(column+" = ? AND id <> ?", value, exceptID).
		Count(&count).Error
	return count > 0, err
}

// Update writes every column of user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	return res.RowsAffected, translate(res.Error)
}

// List returns one page of users matching spec and the total match count.
func (r *userRepository) List(ctx context.Context, spec *filters.Spec) ([]domain.User, int64, error) {
	var total int64
	db := r.db.WithContext(ctx).Model(&domain.User{})
	if err := spec.Where(db).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var users []domain.User
	if err := spec.Apply(r.db.WithContext(ctx).Model(&domain.User{})).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
