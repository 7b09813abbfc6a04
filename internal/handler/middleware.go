package handler

import (
	"github.com/coldline-crm/coldline/pkg/utils"
	"github.com/gin-gonic/gin"
)

// RequestID 为每个请求生成或透传请求ID，用于日志关联
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = utils.RandText(16)
		}
		c.Set("requestId", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}
