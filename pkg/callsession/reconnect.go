package callsession

import "time"

// BackoffStrategy 重连策略
type BackoffStrategy interface {
	// NextDelay 获取第 attempt 次重连前的等待时间（attempt 从 0 开始）
	NextDelay(attempt int) time.Duration

	// ShouldRetry 判断是否应该重试
	ShouldRetry(attempt int) bool
}

// ExponentialBackoff 指数退避策略
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Multiplier   float64
}

// NewExponentialBackoff 创建监控通道默认的指数退避策略
func NewExponentialBackoff() *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: 2 * time.Second,
		MaxDelay:     10 * time.Second,
		MaxAttempts:  3,
		Multiplier:   2.0,
	}
}

// NextDelay 获取下一次重连延迟
func (s *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := float64(s.InitialDelay)
	for i := 0; i < attempt; i++ {
		delay *= s.Multiplier
	}
	if d := time.Duration(delay); d < s.MaxDelay {
		return d
	}
	return s.MaxDelay
}

// ShouldRetry 判断是否应该重试
func (s *ExponentialBackoff) ShouldRetry(attempt int) bool {
	return attempt < s.MaxAttempts
}
