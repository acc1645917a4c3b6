package services

import (
	"errors"
	"math"

	"github.com/kendall-kelly/autoparts-api/utils"
	"gorm.io/gorm"
)

// Page is one slice of a listing plus the numbers the dashboard paginates with
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

const (
	defaultTake = 10
	maxTake     = 100
)

// normalizePaging clamps skip/take to sane values
func normalizePaging(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = defaultTake
	}
	if take > maxTake {
		take = maxTake
	}
	return skip, take
}

func newPage[T any](items []T, total int64, skip, take int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       skip/take + 1,
		PageSize:   take,
		TotalPages: int(math.Ceil(float64(total) / float64(take))),
	}
}

// storeErr passes AppErrors through unchanged and wraps anything else as a
// StoreError
func storeErr(message string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := utils.AsAppError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.NewConflictError("DUPLICATE", message+": record already exists")
	}
	return utils.NewStoreError(message, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
