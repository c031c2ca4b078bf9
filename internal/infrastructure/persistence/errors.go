package persistence

import (
	"errors"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm sentinel errors onto domain errors.
// Unknown errors are returned unchanged.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// jsonListContains builds a LIKE pattern matching a uuid inside a JSON array column.
// UUIDs contain no LIKE wildcards, so no escaping is needed.
func jsonListContains(id string) string {
	return `%"` + id + `"%`
}
