// Package handler exposes the HTTP API: call session control plus CRUD
// over clients, campaigns, customers, and call logs.
package handler

import (
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/coldline-crm/coldline/pkg/calllog"
	"github.com/coldline-crm/coldline/pkg/config"
	"github.com/coldline-crm/coldline/pkg/events"
	"github.com/coldline-crm/coldline/pkg/provider"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers 聚合全部 HTTP 处理器依赖
type Handlers struct {
	cfg       *config.Config
	store     *store.Store
	snapshots *store.SnapshotStore
	provider  *provider.Client
	persister *calllog.Persister
	bus       *events.EventBus
	sessions  *sessionRegistry
	logger    *zap.Logger
}

// New 创建处理器集合
func New(cfg *config.Config, s *store.Store, snapshots *store.SnapshotStore,
	p *provider.Client, persister *calllog.Persister, bus *events.EventBus,
	logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cfg:       cfg,
		store:     s,
		snapshots: snapshots,
		provider:  p,
		persister: persister,
		bus:       bus,
		sessions:  newSessionRegistry(),
		logger:    logger,
	}
}

// Register 注册全部路由
func (h *Handlers) Register(r *gin.Engine) {
	r.Use(RequestID())
	r.GET("/health", h.Health)

	api := r.Group(h.cfg.APIPrefix)
	{
		calls := api.Group("/calls")
		{
			calls.POST("", h.StartCall)
			calls.GET("/:id", h.GetCallSession)
			calls.POST("/:id/hang", h.HangCallSession)
		}

		clients := api.Group("/clients")
		{
			clients.POST("", h.CreateClient)
			clients.GET("", h.ListClients)
			clients.GET("/:id", h.GetClient)
			clients.PUT("/:id", h.UpdateClient)
			clients.DELETE("/:id", h.DeleteClient)
		}

		campaigns := api.Group("/campaigns")
		{
			campaigns.POST("", h.CreateCampaign)
			campaigns.GET("", h.ListCampaigns)
			campaigns.GET("/:id", h.GetCampaign)
			campaigns.PUT("/:id", h.UpdateCampaign)
			campaigns.DELETE("/:id", h.DeleteCampaign)
		}

		customers := api.Group("/customers")
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("", h.ListCustomers)
			customers.GET("/:id", h.GetCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
		}

		api.GET("/call-logs", h.ListCallLogs)

		api.POST("/snapshot/refresh", h.RefreshSnapshot)
		api.GET("/snapshot", h.GetSnapshot)
	}
}
