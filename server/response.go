package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
)

// RespondWithError writes err as an error envelope. AppErrors keep their
// status and code; anything else becomes a 500 INTERNAL_ERROR whose cause is
// logged but not sent.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("request failed", logger.Fields(
			"path", c.FullPath(),
			logger.FieldError, err.Error(),
		))
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 with body as-is.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondAccepted sends a 202 with a Location header pointing at location.
func RespondAccepted(c *gin.Context, location string, body any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusAccepted, body)
}
