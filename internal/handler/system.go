package handler

import (
	"net/http"
	"time"

	"github.com/coldline-crm/coldline/pkg/response"
	"github.com/gin-gonic/gin"
)

// Health 健康检查
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.cfg.ServerName,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// GetSnapshot 返回缓存的记录集合快照
func (h *Handlers) GetSnapshot(c *gin.Context) {
	snap, err := h.snapshots.Load(c.Request.Context())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, snap)
}

// RefreshSnapshot 强制重建快照
func (h *Handlers) RefreshSnapshot(c *gin.Context) {
	snap, err := h.snapshots.Refresh(c.Request.Context())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, snap)
}
