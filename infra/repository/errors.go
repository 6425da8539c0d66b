package repository

import (
	"errors"

	"github.com/fammee/finance/pkg/domain"
	"gorm.io/gorm"
)

// ErrMissingReference is returned when a write names a row that does not exist.
var ErrMissingReference = domain.NewKind(domain.ErrNotFound, "referenced record does not exist")

// MapGormErrorToDomain converts gorm errors anywhere in err's chain to domain
// kinds and returns other errors unchanged. Duplicate and foreign key errors
// are only recognized when the connection sets gorm.Config.TranslateError.
func MapGormErrorToDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrMissingReference
	}
	return err
}

// WrapError runs op and maps its error.
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}

// rowsOrNotFound maps a write that matched no row to notFound.
func rowsOrNotFound(res *gorm.DB, notFound error) error {
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound
	}
	return nil
}
