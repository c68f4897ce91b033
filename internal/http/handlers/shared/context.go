package shared

import (
	"github.com/loanlead-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextAdminID 从上下文读取管理员 ID 并统一处理错误响应。
func GetContextAdminID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("admin_id")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "管理员 ID 不合法", nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "管理员 ID 不合法", nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "管理员 ID 类型错误", nil)
		return 0, false
	}
}
