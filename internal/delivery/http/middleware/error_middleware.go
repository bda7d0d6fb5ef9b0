package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context())

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				// Internal details stay in the log
				log.Error("Internal server error", "path", c.FullPath(), "error", appErr.Err)
				response.Error(c, appErr.Code, "Ocurrió un error inesperado. Intente nuevamente.", nil)
				return
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		log.Error("Unhandled error", "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "Ocurrió un error inesperado. Intente nuevamente.", nil)
	}
}
