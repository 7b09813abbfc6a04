package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/coldline-crm/coldline/cmd/bootstrap"
	"github.com/coldline-crm/coldline/internal/handler"
	"github.com/coldline-crm/coldline/internal/store"
	"github.com/coldline-crm/coldline/internal/task"
	"github.com/coldline-crm/coldline/pkg/cache"
	"github.com/coldline-crm/coldline/pkg/calllog"
	"github.com/coldline-crm/coldline/pkg/config"
	"github.com/coldline-crm/coldline/pkg/events"
	"github.com/coldline-crm/coldline/pkg/logger"
	"github.com/coldline-crm/coldline/pkg/notify"
	"github.com/coldline-crm/coldline/pkg/provider"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. Parse Command Line Parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	flag.Parse()

	// 2. Set Environment Variables
	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	// 3. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}

	// 4. Load Log Configuration
	if err := logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Mode); err != nil {
		panic(err)
	}

	// 5. Load Data Source
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{AutoMigrate: true})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}

	// 6. Load Global Cache
	if err := cache.InitGlobalCache(config.GlobalConfig.Cache); err != nil {
		logger.Error("failed to initialize cache", zap.Error(err))
		logger.Info("falling back to default local cache")
	}

	// 7. Build Core Components
	recordStore := store.New(db, zap.L())
	snapshots := store.NewSnapshotStore(recordStore, cache.GetGlobalCache(), zap.L())
	voiceClient := provider.NewClient(provider.Options{
		BaseURL:       config.GlobalConfig.VoiceAPIBase,
		MonitorBase:   config.GlobalConfig.VoiceMonitorBase,
		Token:         config.GlobalConfig.VoiceAPIToken,
		AssistantID:   config.GlobalConfig.VoiceAssistantID,
		PhoneNumberID: config.GlobalConfig.VoicePhoneNumberID,
	}, zap.L())
	persister, err := calllog.NewPersister(recordStore, zap.L())
	if err != nil {
		logger.Error("persister init failed", zap.Error(err))
		return
	}

	// 8. Wire Event Listeners
	bus := events.GetEventBus()
	notifier := notify.NewWebhookNotifier(config.GlobalConfig.CallEndedWebhookURL, zap.L())
	notifier.SubscribeTo(bus)

	// 9. Start Timed Tasks
	resetCron, err := task.StartMonthlyReset(recordStore, config.GlobalConfig.MonthlyResetSchedule, zap.L())
	if err != nil {
		logger.Error("monthly reset task failed to start", zap.Error(err))
		return
	}
	defer resetCron.Stop()

	// 10. Initialize Gin Routing
	if config.GlobalConfig.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	// 11. Register Routes
	h := handler.New(config.GlobalConfig, recordStore, snapshots, voiceClient, persister, bus, zap.L())
	h.Register(r)

	// 12. Start HTTP Server
	srv := &http.Server{
		Addr:         config.GlobalConfig.Addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	logger.Info("server starting",
		zap.String("addr", config.GlobalConfig.Addr),
		zap.String("mode", config.GlobalConfig.Mode))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", zap.Error(err))
	}
}
