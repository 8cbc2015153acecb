package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/repositories"
	"rentals-api/validation"
)

// CatalogService manages a lookup list such as facilities or payment methods.
type CatalogService[T domain.Facility | domain.PaymentMethod] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, req dto.NameRequest) (*T, error)
	Delete(ctx context.Context, id uint) error
}

type catalogService[T domain.Facility | domain.PaymentMethod] struct {
	repo     repositories.CatalogRepository[T]
	entity   string
	build    func(name string) *T
	validate *validation.Validator
}

func NewFacilityService(repo repositories.CatalogRepository[domain.Facility], validate *validation.Validator) CatalogService[domain.Facility] {
	return &catalogService[domain.Facility]{
		repo:     repo,
		entity:   "Facility",
		build:    func(name string) *domain.Facility { return &domain.Facility{Name: name} },
		validate: validate,
	}
}

func NewPaymentMethodService(repo repositories.CatalogRepository[domain.PaymentMethod], validate *validation.Validator) CatalogService[domain.PaymentMethod] {
	return &catalogService[domain.PaymentMethod]{
		repo:     repo,
		entity:   "Payment method",
		build:    func(name string) *domain.PaymentMethod { return &domain.PaymentMethod{Name: name} },
		validate: validate,
	}
}

func (s *catalogService[T]) List(ctx context.Context) ([]T, error) {
	return s.repo.List(ctx)
}

func (s *catalogService[T]) Create(ctx context.Context, req dto.NameRequest) (*T, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	duplicate := domain.NewValidationError("name", fmt.Sprintf("%s %q already exists. Name must be unique", s.entity, req.Name))
	taken, err := s.repo.NameTaken(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicate
	}

	item := s.build(req.Name)
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, duplicate
		}
		return nil, err
	}
	return item, nil
}

// Delete removes the row. A payment method still referenced by bookings
// fails with domain.ErrInUse.
func (s *catalogService[T]) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.NewNotFound(s.entity, id)
	}
	return nil
}
