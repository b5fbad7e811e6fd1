package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

type nopLogger struct{}

func (l nopLogger) Debug(event string, fields out.LogFields) {}
func (l nopLogger) Info(event string, fields out.LogFields)  {}
func (l nopLogger) Warn(event string, fields out.LogFields)  {}
func (l nopLogger) Error(event string, fields out.LogFields) {}

func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

func newTestCache(t *testing.T) *CacheAdapter {
	t.Helper()
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.TemplatesSize = 100

	adapter, err := NewCacheAdapter(cfg, nopLogger{})
	require.NoError(t, err)
	require.NotNil(t, adapter)
	return adapter
}

func date(t *testing.T, s string) json_types.Date {
	t.Helper()
	d, err := json_types.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCacheAdapter_StoreAndGet(t *testing.T) {
	adapter := newTestCache(t)
	ctx := context.Background()
	day := date(t, "2026-09-14")

	_, exists := adapter.GetTemplate(ctx, 1, day)
	assert.False(t, exists)

	template := &domain.WorkTemplate{ID: 42, DoctorID: 1}
	adapter.StoreTemplate(ctx, 1, day, template)

	cached, exists := adapter.GetTemplate(ctx, 1, day)
	require.True(t, exists)
	assert.Equal(t, int64(42), cached.ID)
}

func TestCacheAdapter_NegativeEntry(t *testing.T) {
	adapter := newTestCache(t)
	ctx := context.Background()
	day := date(t, "2026-09-14")

	// "Шаблона нет" - тоже кэшируемый результат, отличимый от промаха
	adapter.StoreTemplate(ctx, 1, day, nil)

	cached, exists := adapter.GetTemplate(ctx, 1, day)
	assert.True(t, exists)
	assert.Nil(t, cached)
}

func TestCacheAdapter_InvalidateDoctor(t *testing.T) {
	adapter := newTestCache(t)
	ctx := context.Background()

	adapter.StoreTemplate(ctx, 1, date(t, "2026-09-14"), &domain.WorkTemplate{DoctorID: 1})
	adapter.StoreTemplate(ctx, 1, date(t, "2026-09-15"), &domain.WorkTemplate{DoctorID: 1})
	adapter.StoreTemplate(ctx, 2, date(t, "2026-09-14"), &domain.WorkTemplate{DoctorID: 2})

	adapter.InvalidateDoctor(ctx, 1)

	_, exists := adapter.GetTemplate(ctx, 1, date(t, "2026-09-14"))
	assert.False(t, exists)
	_, exists = adapter.GetTemplate(ctx, 1, date(t, "2026-09-15"))
	assert.False(t, exists)

	// Другие врачи не затронуты
	_, exists = adapter.GetTemplate(ctx, 2, date(t, "2026-09-14"))
	assert.True(t, exists)
}

func TestCacheAdapter_InvalidateNoPrefixCollision(t *testing.T) {
	adapter := newTestCache(t)
	ctx := context.Background()
	day := date(t, "2026-09-14")

	adapter.StoreTemplate(ctx, 1, day, &domain.WorkTemplate{DoctorID: 1})
	adapter.StoreTemplate(ctx, 11, day, &domain.WorkTemplate{DoctorID: 11})

	adapter.InvalidateDoctor(ctx, 1)

	// Префикс "1:" не должен зацепить врача 11
	_, exists := adapter.GetTemplate(ctx, 11, day)
	assert.True(t, exists)
}

func TestNewCacheAdapter_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = false

	adapter, err := NewCacheAdapter(cfg, nopLogger{})
	require.NoError(t, err)
	assert.Nil(t, adapter)
}
