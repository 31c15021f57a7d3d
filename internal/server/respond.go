package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
)

// writeError sends {"error": ...} for client errors and adds "details" with
// the underlying cause for server errors.
func writeError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	body := gin.H{"error": common.PublicMessage(err)}
	if status >= http.StatusInternalServerError {
		var appErr *common.AppError
		if errors.As(err, &appErr) && appErr.Cause != nil {
			body["details"] = appErr.Cause.Error()
		} else {
			body["details"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}
