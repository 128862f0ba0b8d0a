package service

import (
	"errors"
	"strings"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
	systemActor     = "system"
)

// paginate slices items to the requested page.
func paginate[T any](items []T, page, size int) ([]T, *models.Pagination) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	total := len(items)
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	// Compare before multiplying so an oversized page cannot overflow.
	if page-1 > total/size {
		return items[:0], pagination
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], pagination
}

// lookupError maps store errors onto the API taxonomy.
func lookupError(err error, entity string) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+entity)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func actorOrSystem(actor string) string {
	if actor = strings.TrimSpace(actor); actor == "" {
		return systemActor
	}
	return actor
}
