package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rentals-api/domain"
)

// translate maps constraint violations reported by GORM (TranslateError is
// enabled in database.Open) to domain sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", domain.ErrInUse, err)
	}
	return err
}

func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFound(entity, id)
	}
	return err
}
