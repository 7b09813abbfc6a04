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

// listQuery 通用列表查询参数
type listQuery struct {
	Status   string `form:"status"`
	Name     string `form:"name"`
	SortBy   string `form:"sortBy"`
	SortDesc bool   `form:"sortDesc"`
}

func (q *listQuery) filters() []store.Filter {
	var fs []store.Filter
	if q.Status != "" {
		fs = append(fs, store.Filter{Field: "status", Op: store.FilterEq, Value: q.Status})
	}
	if q.Name != "" {
		fs = append(fs, store.Filter{Field: "name", Op: store.FilterContains, Value: q.Name})
	}
	return fs
}

func (q *listQuery) sort() *store.Sort {
	if q.SortBy == "" {
		return nil
	}
	return &store.Sort{Field: q.SortBy, Desc: q.SortDesc}
}

// CreateClient 创建客户端
func (h *Handlers) CreateClient(c *gin.Context) {
	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if client.Name == "" {
		response.FailWithStatus(c, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.store.CreateClient(c.Request.Context(), &client); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, client)
}

// ListClients 按过滤条件列出客户端
func (h *Handlers) ListClients(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	clients, err := h.store.ListClients(c.Request.Context(), q.filters(), q.sort())
	if err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, clients)
}

// GetClient 查询单个客户端
func (h *Handlers) GetClient(c *gin.Context) {
	client, err := h.store.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.FailWithStatus(c, http.StatusNotFound, "client not found")
			return
		}
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, client)
}

// UpdateClient 更新客户端字段
func (h *Handlers) UpdateClient(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.FailWithStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.store.UpdateClient(c.Request.Context(), c.Param("id"), updates); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, nil)
}

// DeleteClient 删除客户端
func (h *Handlers) DeleteClient(c *gin.Context) {
	if err := h.store.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		response.FailWithStatus(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Ok(c, nil)
}
