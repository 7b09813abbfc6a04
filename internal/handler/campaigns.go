package handler

import (
	"errors"
	"net/http"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/coldline-crm/coldline/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCampaign 创建营销活动
func (h *Handlers) CreateCampaign(c *gin.Context) {
	var campaign models.Campaign
	if err := c.ShouldBindJSON(&campaign); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if campaign.Name == "" || campaign.ClientID == "" {
		response.FailWithStatus(c, http.StatusBadRequest, "name and clientId are required")
		return
	}
	if err := h.store.CreateCampaign(c.Request.Context(), &campaign); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, campaign)
}

// ListCampaigns 列出营销活动，可按客户端过滤
func (h *Handlers) ListCampaigns(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	filters := q.filters()
	if clientID := c.Query("clientId"); clientID != "" {
		filters = append(filters, store.Filter{Field: "client_id", Op: store.FilterEq, Value: clientID})
	}
	campaigns, err := h.store.ListCampaigns(c.Request.Context(), filters, q.sort())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, campaigns)
}

// GetCampaign 查询单个营销活动
func (h *Handlers) GetCampaign(c *gin.Context) {
	campaign, err := h.store.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.FailWithStatus(c, http.StatusNotFound, "campaign not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, campaign)
}

// UpdateCampaign 更新营销活动字段
func (h *Handlers) UpdateCampaign(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.store.UpdateCampaign(c.Request.Context(), c.Param("id"), updates); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, nil)
}

// DeleteCampaign 删除营销活动
func (h *Handlers) DeleteCampaign(c *gin.Context) {
	if err := h.store.DeleteCampaign(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, nil)
}
