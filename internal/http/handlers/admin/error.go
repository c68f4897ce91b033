package admin

import (
	handlershared "github.com/loanlead-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func paginationQuery(c *gin.Context) (int, int) {
	return handlershared.PaginationQuery(c)
}
