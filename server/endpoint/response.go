package endpoint

import (
	"errors"
	"maps"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/nyayagpt/nyaya/errors"
)

// RespondWithError inspects err: if it is an *apperrors.AppError the status and
// structured body are derived automatically; otherwise a generic 500 is sent.
// The cause's text is added under details.cause so clients see what failed
// inside a pipeline.
func RespondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	resp := appErr.ToResponse()
	if appErr.Cause != nil {
		details := maps.Clone(resp.Error.Details)
		if details == nil {
			details = map[string]any{}
		}
		details["cause"] = appErr.Cause.Error()
		resp.Error.Details = details
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}
