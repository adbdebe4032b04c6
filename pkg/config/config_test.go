package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg := fromViper(newTestViper())

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 10*time.Minute, cfg.Seating.CacheTTL)
	assert.Equal(t, int64(100000), cfg.Seating.MaxRangeSize)
	assert.Equal(t, "seating.plan.generated", cfg.Events.Subject)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_PLAN_CACHE", "true")
	t.Setenv("PLAN_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("EVENTS_RETRY_DELAY", "not-a-duration")

	cfg := fromViper(newTestViper())

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Seating.CacheEnabled)
	assert.Equal(t, 90*time.Second, cfg.Seating.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Second, cfg.Events.RetryDelay)
}

func TestMaxRangeSizeOverride(t *testing.T) {
	t.Setenv("SEATING_MAX_RANGE_SIZE", "500")
	assert.Equal(t, int64(500), fromViper(newTestViper()).Seating.MaxRangeSize)

	t.Setenv("SEATING_MAX_RANGE_SIZE", "0")
	assert.Equal(t, int64(100000), fromViper(newTestViper()).Seating.MaxRangeSize)
}
