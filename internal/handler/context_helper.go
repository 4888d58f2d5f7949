package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/middleware"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// maxBodyBytes caps request bodies; a full semester catalog is a few MB.
const maxBodyBytes = 8 << 20

// bindJSON decodes the capped request body into dst. The returned error is
// ready for response.Error.
func bindJSON(c *gin.Context, dst interface{}, message string) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return appErrors.Wrap(err, appErrors.ErrTooLarge.Code, appErrors.ErrTooLarge.Status, "request body is too large")
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

// withProcessingMeta fills the envelope meta of a planner response.
func withProcessingMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	middleware.StampProcessingTime(c, start)
	return middleware.ExtractMeta(c)
}
