package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

// templateCacheEntry хранит результат резолва, включая отрицательный:
// Template == nil означает "на эту дату шаблона нет", что тоже валидный ответ
type templateCacheEntry struct {
	Template *domain.WorkTemplate
}

type CacheAdapter struct {
	templates *lru.Cache[string, *templateCacheEntry]
	mu        sync.RWMutex
	logger    out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	templates, err := lru.New[string, *templateCacheEntry](cfg.Cache.TemplatesSize)
	if err != nil {
		logger.Error("cache.templates.init_failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.TemplatesSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		templates: templates,
		logger:    logger.WithModule("CacheAdapter"),
	}, nil
}

func templateKey(doctorID int64, date json_types.Date) string {
	return fmt.Sprintf("%d:%s", doctorID, date.String())
}

func (c *CacheAdapter) GetTemplate(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.templates.Get(templateKey(doctorID, date))
	if !exists {
		return nil, false
	}

	c.logger.Debug("cache.templates.hit", out.LogFields{
		"doctorId": doctorID,
		"date":     date.String(),
	})
	return entry.Template, true
}

func (c *CacheAdapter) StoreTemplate(ctx context.Context, doctorID int64, date json_types.Date, template *domain.WorkTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.templates.Add(templateKey(doctorID, date), &templateCacheEntry{Template: template})
}

// InvalidateDoctor сбрасывает все даты врача. Вызывается при любом
// изменении его расписания, шаблонов или календаря.
func (c *CacheAdapter) InvalidateDoctor(ctx context.Context, doctorID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strconv.FormatInt(doctorID, 10) + ":"
	removed := 0
	for _, key := range c.templates.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.templates.Remove(key)
			removed++
		}
	}

	c.logger.Debug("cache.templates.invalidated", out.LogFields{
		"doctorId": doctorID,
		"removed":  removed,
	})
}
