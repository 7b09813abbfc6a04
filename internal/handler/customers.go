package handler

import (
	"errors"
	"net/http"

	"github.com/coldline-crm/coldline/internal/models"
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/coldline-crm/coldline/pkg/provider"
	"github.com/coldline-crm/coldline/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateCustomer 导入客户。电话号码必须是合法的澳大利亚国际格式。
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := provider.ValidatePhoneNumber(customer.Phone); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, customer)
}

// ListCustomers 列出客户，可按活动或电话过滤
func (h *Handlers) ListCustomers(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	filters := q.filters()
	if campaignID := c.Query("campaignId"); campaignID != "" {
		filters = append(filters, store.Filter{Field: "campaign_id", Op: store.FilterEq, Value: campaignID})
	}
	if phone := c.Query("phone"); phone != "" {
		filters = append(filters, store.Filter{Field: "phone", Op: store.FilterEq, Value: phone})
	}
	customers, err := h.store.ListCustomers(c.Request.Context(), filters, q.sort())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, customers)
}

// GetCustomer 查询单个客户
func (h *Handlers) GetCustomer(c *gin.Context) {
	customer, err := h.store.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.FailWithStatus(c, http.StatusNotFound, "customer not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, customer)
}

// UpdateCustomer 更新客户字段
func (h *Handlers) UpdateCustomer(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if phone, ok := updates["phone"].(string); ok {
		if err := provider.ValidatePhoneNumber(phone); err != nil {
			response.FailWithStatus(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := h.store.UpdateCustomer(c.Request.Context(), c.Param("id"), updates); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, nil)
}
