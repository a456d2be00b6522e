package handlers

import (
	"slotly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped logger set by the logging middleware,
// falling back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// bindError reports a malformed request body or query.
func bindError(c *gin.Context, err error) {
	getLogger(c).Debug("invalid request", zap.Error(err))
	utils.RespondError(c, utils.Validation("invalid request: %s", err.Error()))
}
