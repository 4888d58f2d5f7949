package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg := fromViper(newTestViper(nil))

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 12, cfg.Planner.Threshold)
	assert.Equal(t, 10*time.Second, cfg.Planner.SearchTimeout)
	assert.Equal(t, 12, cfg.Planner.MaxSubjects)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Jobs.ResultTTL)
	assert.True(t, cfg.Jobs.Enabled)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Catalog.Enabled)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{
		"PLANNER_THRESHOLD":      20,
		"PLANNER_SEARCH_TIMEOUT": "750ms",
		"PLANNER_CACHE_TTL":      "not-a-duration",
		"PLANNER_WORKERS":        -3,
		"ALLOWED_ORIGINS":        " https://a.example , ,https://b.example",
		"ENABLE_CACHE":           true,
		"PLANNER_MAX_SUBJECTS":   0,
	}))

	assert.Equal(t, 20, cfg.Planner.Threshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Planner.SearchTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 12, cfg.Planner.MaxSubjects)
}

func TestZeroThresholdIsKept(t *testing.T) {
	cfg := fromViper(newTestViper(map[string]interface{}{"PLANNER_THRESHOLD": 0}))
	assert.Equal(t, 0, cfg.Planner.Threshold)

	cfg = fromViper(newTestViper(map[string]interface{}{"PLANNER_THRESHOLD": -1}))
	assert.Equal(t, 12, cfg.Planner.Threshold)
}
