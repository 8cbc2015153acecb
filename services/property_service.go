package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/events"
	"rentals-api/filters"
	"rentals-api/repositories"
	"rentals-api/uploads"
	"rentals-api/validation"
)

const maxPhotosPerUpload = 10

// PropertyService holds the listing rules: publication, approval, edits and
// photos.
type PropertyService interface {
	List(ctx context.Context, spec *filters.Spec) ([]domain.Property, filters.Pagination, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]domain.Property, error)
	GetByID(ctx context.Context, id uint) (*domain.Property, error)
	Create(ctx context.Context, actor Actor, req dto.CreatePropertyRequest) (*domain.Property, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UpdatePropertyRequest) (*domain.Property, bool, error)
	Approve(ctx context.Context, id uint) (*domain.Property, bool, error)
	AddPhotos(ctx context.Context, actor Actor, id uint, files []*multipart.FileHeader) (*domain.Property, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type PropertyOptions struct {
	UploadFolder   string
	LegacyNextPage bool
}

type propertyService struct {
	properties repositories.PropertyRepository
	facilities repositories.CatalogRepository[domain.Facility]
	publisher  events.Publisher
	uploader   uploads.Uploader
	home       Invalidator
	validate   *validation.Validator
	logger     log.Logger
	opts       PropertyOptions
}

func NewPropertyService(
	properties repositories.PropertyRepository,
	facilities repositories.CatalogRepository[domain.Facility],
	publisher events.Publisher,
	uploader uploads.Uploader,
	home Invalidator,
	validate *validation.Validator,
	logger log.Logger,
	opts PropertyOptions,
) PropertyService {
	if home == nil {
		home = noopInvalidator{}
	}
	return &propertyService{
		properties: properties,
		facilities: facilities,
		publisher:  publisher,
		uploader:   uploader,
		home:       home,
		validate:   validate,
		logger:     log.With(logger, "service", "properties"),
		opts:       opts,
	}
}

// List returns one page of the publicly visible listings matching spec.
func (s *propertyService) List(ctx context.Context, spec *filters.Spec) ([]domain.Property, filters.Pagination, error) {
	spec.Add(filters.Equality{Field: filters.ColumnStatus, Value: string(domain.PropertyStatusAvailable)})

	properties, total, err := s.properties.List(ctx, spec)
	if err != nil {
		return nil, filters.Pagination{}, err
	}
	p, err := page(total, spec, s.opts.LegacyNextPage)
	if err != nil {
		return nil, filters.Pagination{}, err
	}
	return properties, p, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Property, error) {
	return s.properties.ListByOwner(ctx, ownerID)
}

func (s *propertyService) GetByID(ctx context.Context, id uint) (*domain.Property, error) {
	return s.properties.GetByID(ctx, id)
}

// Create publishes a listing owned by the actor. It waits in pending until
// an administrator approves it.
func (s *propertyService) Create(ctx context.Context, actor Actor, req dto.CreatePropertyRequest) (*domain.Property, error) {
	// trim first so whitespace-only text fails required and min
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.Country = strings.TrimSpace(req.Country)
	req.Typology = strings.ToLower(strings.TrimSpace(req.Typology))
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	// unknown facility ids are field errors, not a 404
	facilities, err := s.resolveFacilities(ctx, req.Facilities)
	if err != nil {
		return nil, err
	}

	property := &domain.Property{
		OwnerID:             actor.UserID,
		Title:               req.Title,
		Description:         req.Description,
		Address:             req.Address,
		City:                req.City,
		Country:             req.Country,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		NumberBeds:          req.NumberBeds,
		NumberBedrooms:      req.NumberBedrooms,
		NumberBathrooms:     req.NumberBathrooms,
		NumberGuestsAllowed: req.NumberGuestsAllowed,
		Price:               req.Price,
		Typology:            req.Typology,
		Status:              domain.PropertyStatusPending,
		Facilities:          facilities,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, err
	}

	// the search indexer hears about pending listings too
	s.announce(ctx, events.ActionCreate, property.ID)
	return property, nil
}

// Update applies the non-nil fields of req. The boolean reports whether
// anything changed.
func (s *propertyService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdatePropertyRequest) (*domain.Property, bool, error) {
	for _, field := range []*string{req.Title, req.Description, req.Address, req.City, req.Country} {
		trimInPlace(field)
	}
	if req.Typology != nil {
		t := strings.ToLower(strings.TrimSpace(*req.Typology))
		req.Typology = &t
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, false, err
	}

	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !actor.CanManage(property.OwnerID) {
		return nil, false, domain.ErrForbidden
	}

	// scalar columns and the facility links are written separately
	changed := apply(&property.Title, req.Title)
	changed = apply(&property.Description, req.Description) || changed
	changed = apply(&property.Address, req.Address) || changed
	changed = apply(&property.City, req.City) || changed
	changed = apply(&property.Country, req.Country) || changed
	changed = apply(&property.Typology, req.Typology) || changed
	changed = apply(&property.Latitude, req.Latitude) || changed
	changed = apply(&property.Longitude, req.Longitude) || changed
	changed = apply(&property.NumberBeds, req.NumberBeds) || changed
	changed = apply(&property.NumberBedrooms, req.NumberBedrooms) || changed
	changed = apply(&property.NumberBathrooms, req.NumberBathrooms) || changed
	changed = apply(&property.NumberGuestsAllowed, req.NumberGuestsAllowed) || changed
	changed = apply(&property.Price, req.Price) || changed

	facilitiesChanged := false
	var facilities []domain.Facility
	if req.Facilities != nil && !sameIDs(facilityIDs(property.Facilities), *req.Facilities) {
		facilities, err = s.resolveFacilities(ctx, *req.Facilities)
		if err != nil {
			return nil, false, err
		}
		facilitiesChanged = true
	}

	// nothing differs: no write and no event
	if !changed && !facilitiesChanged {
		return property, false, nil
	}
	if changed {
		if err := s.properties.Update(ctx, property); err != nil {
			return nil, false, err
		}
	}
	if facilitiesChanged {
		if err := s.properties.ReplaceFacilities(ctx, property, facilities); err != nil {
			return nil, false, err
		}
		property.Facilities = facilities
	}

	s.announce(ctx, events.ActionUpdate, property.ID)
	return property, true, nil
}

// Approve makes a pending listing publicly available.
func (s *propertyService) Approve(ctx context.Context, id uint) (*domain.Property, bool, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if property.Status == domain.PropertyStatusAvailable {
		return property, false, nil
	}

	property.Status = domain.PropertyStatusAvailable
	if err := s.properties.Update(ctx, property); err != nil {
		return nil, false, err
	}
	s.announce(ctx, events.ActionUpdate, property.ID)
	return property, true, nil
}

// AddPhotos uploads files into the listing's folder and records their URLs.
func (s *propertyService) AddPhotos(ctx context.Context, actor Actor, id uint, files []*multipart.FileHeader) (*domain.Property, error) {
	// 1. Bound the batch before touching storage
	switch {
	case len(files) == 0:
		return nil, domain.NewValidationError("photos", "At least one photo is required")
	case len(files) > maxPhotosPerUpload:
		return nil, domain.NewValidationError("photos", fmt.Sprintf("At most %d photos can be uploaded at once", maxPhotosPerUpload))
	}

	// 2. Only the owner or an admin may add photos
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(property.OwnerID) {
		return nil, domain.ErrForbidden
	}

	// 3. Upload one by one; the first failure aborts before anything is stored
	folder := fmt.Sprintf("%s/properties/%d", s.opts.UploadFolder, property.ID)
	photos := make([]domain.Photo, 0, len(files))
	for _, fh := range files {
		url, err := s.uploader.Upload(ctx, fh, folder)
		if err != nil {
			return nil, err
		}
		photos = append(photos, domain.Photo{PropertyID: property.ID, URL: url})
	}
	if err := s.properties.AddPhotos(ctx, photos); err != nil {
		return nil, err
	}

	property.Photos = append(property.Photos, photos...)
	s.announce(ctx, events.ActionUpdate, property.ID)
	return property, nil
}

// Delete removes the listing with its photos and bookings.
func (s *propertyService) Delete(ctx context.Context, actor Actor, id uint) error {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(property.OwnerID) {
		return domain.ErrForbidden
	}

	n, err := s.properties.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.NewNotFound("Property", id)
	}

	s.announce(ctx, events.ActionDelete, id)
	return nil
}

// resolveFacilities loads the facilities behind ids; every id must exist.
func (s *propertyService) resolveFacilities(ctx context.Context, ids []uint) ([]domain.Facility, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.Facility{}, nil
	}

	found, err := s.facilities.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) == len(ids) {
		return found, nil
	}

	known := facilityIDs(found)
	verr := &domain.ValidationError{}
	for _, id := range ids {
		if !slices.Contains(known, id) {
			verr.Add("facilities", fmt.Sprintf("Facility with id %d does not exist", id))
		}
	}
	return nil, verr
}

// announce notifies indexers and drops cached statistics. A broker outage
// never fails the request.
func (s *propertyService) announce(ctx context.Context, action string, id uint) {
	s.home.Invalidate()
	if err := s.publisher.PublishProperty(ctx, action, id); err != nil {
		level.Warn(s.logger).Log("msg", "property event not published", "action", action, "property_id", id, "err", err)
	}
}

func facilityIDs(facilities []domain.Facility) []uint {
	ids := make([]uint, len(facilities))
	for i, f := range facilities {
		ids[i] = f.ID
	}
	return ids
}

func uniqueIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func sameIDs(a, b []uint) bool {
	return slices.Equal(uniqueIDs(a), uniqueIDs(b))
}

func apply[T comparable](dst *T, v *T) bool {
	if v == nil || *v == *dst {
		return false
	}
	*dst = *v
	return true
}

// trimInPlace strips surrounding whitespace from a submitted text field.
func trimInPlace(v *string) {
	if v != nil {
		*v = strings.TrimSpace(*v)
	}
}
