package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/scheduling"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

func actorFromContext(c *gin.Context) string {
	return middleware.ActorFromContext(c)
}

// weekFromQuery reads ?week=YYYY-MM-DD, defaulting to the current week.
func weekFromQuery(c *gin.Context) (time.Time, error) {
	raw := c.Query("week")
	if raw == "" {
		return scheduling.WeekStart(time.Now().UTC()), nil
	}
	week, err := scheduling.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "week must be YYYY-MM-DD")
	}
	return week, nil
}

func dateFromQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, key+" must be YYYY-MM-DD")
	}
	return &date, nil
}

func pagingFromQuery(c *gin.Context) (page, size int) {
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = v
	}
	return page, size
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
