package middleware

import (
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"dropsync/internal/logger"

	"github.com/gin-gonic/gin"
)

func Recovery(logger *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// Client disconnects are not worth a stack trace
		if ne, ok := recovered.(*net.OpError); ok {
			if se, ok := ne.Err.(*os.SyscallError); ok {
				msg := strings.ToLower(se.Error())
				if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
					c.Abort()
					return
				}
			}
		}

		logger.Error("panic recovered: %v\n%s", recovered, string(debug.Stack()))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
