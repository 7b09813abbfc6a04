package events

import (
	"sync"
	"time"

	"github.com/coldline-crm/coldline/pkg/logger"
	"go.uber.org/zap"
)

// 呼叫生命周期事件类型
const (
	EventCallStarted = "call.started"
	EventCallEnded   = "call.ended"
	EventCallLogged  = "call.logged"
)

// Event 系统事件
type Event struct {
	Type      string                 `json:"type"`      // 事件类型，如 "call.started", "call.ended"
	Timestamp time.Time              `json:"timestamp"` // 事件时间戳
	Data      map[string]interface{} `json:"data"`      // 事件数据
	Source    string                 `json:"source"`    // 事件来源
}

// EventHandler 事件处理器
type EventHandler func(event Event) error

// EventBus 事件总线
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

var globalEventBus *EventBus
var once sync.Once

// GetEventBus 获取全局事件总线实例
func GetEventBus() *EventBus {
	once.Do(func() {
		globalEventBus = NewEventBus()
	})
	return globalEventBus
}

// NewEventBus 创建事件总线（测试使用独立实例）
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

// Subscribe 订阅事件
func (bus *EventBus) Subscribe(eventType string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[eventType] = append(bus.handlers[eventType], handler)
	logger.Debug("Event handler subscribed", zap.String("eventType", eventType))
}

// Unsubscribe 取消订阅（移除所有该类型的处理器）
func (bus *EventBus) Unsubscribe(eventType string) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.handlers, eventType)
}

// Publish 发布事件，处理器异步执行
func (bus *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.RLock()
	handlers := bus.handlers[event.Type]
	wildcardHandlers := bus.handlers["*"]
	allHandlers := make([]EventHandler, 0, len(handlers)+len(wildcardHandlers))
	allHandlers = append(allHandlers, handlers...)
	allHandlers = append(allHandlers, wildcardHandlers...)
	bus.mu.RUnlock()

	if len(allHandlers) == 0 {
		logger.Debug("No handlers for event", zap.String("eventType", event.Type))
		return
	}

	for _, handler := range allHandlers {
		go func(h EventHandler) {
			if err := h(event); err != nil {
				logger.Error("Event handler failed",
					zap.String("eventType", event.Type),
					zap.Error(err))
			}
		}(handler)
	}
}

// PublishEvent 便捷方法：发布事件
func PublishEvent(eventType string, data map[string]interface{}, source string) {
	GetEventBus().Publish(Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Source:    source,
	})
}
