package out

import (
	"context"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// ScheduleStorePort - доступ к шаблонам рабочего времени и календарю врача.
// Range-методы нужны резолверу для bulk-запросов: один проход по данным
// вместо похода в хранилище на каждую дату диапазона.
type ScheduleStorePort interface {
	// Шаблон на конкретную дату (daily override)
	GetDailyOverride(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, error)
	GetDailyOverrides(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]*domain.WorkTemplate, error)

	// Еженедельный шаблон, dayOfWeek по соглашению domain.ScheduleDayOfWeek
	GetWeeklyTemplate(ctx context.Context, doctorID int64, dayOfWeek int) (*domain.WorkTemplate, error)
	GetWeeklyTemplates(ctx context.Context, doctorID int64) (map[int]*domain.WorkTemplate, error)

	// Календарь нерабочих дней
	IsDayOff(ctx context.Context, doctorID int64, date json_types.Date) (bool, error)
	GetDayOffs(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]bool, error)
}
