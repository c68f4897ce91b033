package admin

import (
	handlershared "github.com/loanlead-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextAdminID(c)
}
