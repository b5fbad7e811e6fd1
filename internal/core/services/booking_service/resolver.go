package booking_service

import (
	"context"
	"fmt"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
	"github.com/hospitalred/appointment-booking-service/internal/utils"
)

// resolveTemplate определяет действующий шаблон врача на дату.
// Приоритет: нерабочий день календаря > активный шаблон на дату >
// активный еженедельный шаблон. nil без ошибки - врач в этот день не принимает.
func (s *BookingService) resolveTemplate(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, error) {
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		if template, exists := s.cachePort.GetTemplate(ctx, doctorID, date); exists {
			s.logger.Debug("resolver.cache.hit", out.LogFields{
				"doctorId": doctorID,
				"date":     date.String(),
			})
			return template, nil
		}
	}

	template, err := s.resolveTemplateFromStore(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	// Отрицательный результат кэшируется тоже: "шаблона нет" - валидный ответ
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.StoreTemplate(ctx, doctorID, date, template)
	}

	return template, nil
}

func (s *BookingService) resolveTemplateFromStore(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, error) {
	dayOff, err := s.scheduleStore.IsDayOff(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("resolver.day_off.fetch_failed: %w", err)
	}
	if dayOff {
		return nil, nil
	}

	daily, err := s.scheduleStore.GetDailyOverride(ctx, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("resolver.daily.fetch_failed: %w", err)
	}
	if daily != nil && daily.Active {
		return daily, nil
	}

	// Неактивный шаблон на дату не блокирует еженедельный:
	// для резолвера он неотличим от отсутствующего
	weekly, err := s.scheduleStore.GetWeeklyTemplate(ctx, doctorID, domain.ScheduleDayOfWeek(date.Date))
	if err != nil {
		return nil, fmt.Errorf("resolver.weekly.fetch_failed: %w", err)
	}
	if weekly != nil && weekly.Active {
		return weekly, nil
	}

	return nil, nil
}

// resolveTemplatesRange резолвит шаблоны на каждую дату диапазона тремя
// range-запросами: все шаблоны на даты, все еженедельные шаблоны врача,
// все нерабочие дни. Ключ результата - YYYY-MM-DD; даты без шаблона
// присутствуют со значением nil.
func (s *BookingService) resolveTemplatesRange(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]*domain.WorkTemplate, error) {
	dailies, err := s.scheduleStore.GetDailyOverrides(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("resolver.daily.fetch_failed: %w", err)
	}

	weeklies, err := s.scheduleStore.GetWeeklyTemplates(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("resolver.weekly.fetch_failed: %w", err)
	}

	dayOffs, err := s.scheduleStore.GetDayOffs(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("resolver.day_off.fetch_failed: %w", err)
	}

	result := make(map[string]*domain.WorkTemplate)
	for _, day := range utils.DaysBetween(from, to) {
		key := day.String()
		result[key] = pickTemplate(day, dailies[key], weeklies, dayOffs[key])
	}

	return result, nil
}

func pickTemplate(day json_types.Date, daily *domain.WorkTemplate, weeklies map[int]*domain.WorkTemplate, isDayOff bool) *domain.WorkTemplate {
	if isDayOff {
		return nil
	}
	if daily != nil && daily.Active {
		return daily
	}
	if weekly := weeklies[domain.ScheduleDayOfWeek(day.Date)]; weekly != nil && weekly.Active {
		return weekly
	}
	return nil
}
