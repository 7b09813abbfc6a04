package handler

import (
	"net/http"

	"github.com/coldline-crm/coldline/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// ListCallLogs 列出通话日志，按时间倒序
func (h *Handlers) ListCallLogs(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "100"))
	logs, err := h.store.ListCallLogs(c.Request.Context(),
		c.Query("clientId"), c.Query("campaignId"), limit)
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, logs)
}
