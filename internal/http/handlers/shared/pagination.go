package shared

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// PaginationQuery 读取分页查询参数。
// 每页条数参数名为 pageSize，兼容 page_size 写法。
func PaginationQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	raw := c.Query("pageSize")
	if raw == "" {
		raw = c.Query("page_size")
	}
	pageSize, _ := strconv.Atoi(raw)
	return NormalizePagination(page, pageSize)
}
