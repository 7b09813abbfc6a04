package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require.NoError(t, Load())

	cfg := GlobalConfig
	assert.Equal(t, "coldline", cfg.ServerName)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "https://api.vapi.ai", cfg.VoiceAPIBase)
	assert.Equal(t, "wss://api.vapi.ai", cfg.VoiceMonitorBase)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"you are matt", "you are ben"}, cfg.TranscriptMarkers)
	assert.Equal(t, "0 0 1 * *", cfg.MonthlyResetSchedule)
	assert.Equal(t, "local", cfg.Cache.Type)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "5s")
	t.Setenv("TRANSCRIPT_FILTER_MARKERS", "You Are Alice, you are bob ,")
	t.Setenv("SERVER_NAME", "coldline-staging")

	require.NoError(t, Load())
	cfg := GlobalConfig
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"you are alice", "you are bob"}, cfg.TranscriptMarkers)
	assert.Equal(t, "coldline-staging", cfg.ServerName)
}

func TestParseDurationFallsBack(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseDuration("", 2*time.Second))
	assert.Equal(t, 2*time.Second, parseDuration("garbage", 2*time.Second))
	assert.Equal(t, time.Minute, parseDuration("1m", 2*time.Second))
}

func TestParseMarkers(t *testing.T) {
	assert.Equal(t, []string{"you are matt", "you are ben"}, parseMarkers(""))
	assert.Equal(t, []string{"one", "two"}, parseMarkers("One, TWO"))
}
