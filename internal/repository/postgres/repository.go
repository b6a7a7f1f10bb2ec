package postgres

import (
	"errors"

	"gorm.io/gorm"

	ierr "github.com/waterbills/waterbills/internal/errors"
)

// translateErr maps gorm errors onto the domain sentinels. Unique-index
// violations arrive as gorm.ErrDuplicatedKey because the client enables
// error translation.
func translateErr(err error, entity string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	default:
		return ierr.WithError(err).
			WithHintf("Failed to access %s", entity).
			Mark(ierr.ErrDatabase)
	}
}
