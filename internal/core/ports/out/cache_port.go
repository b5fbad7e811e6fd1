package out

import (
	"context"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// CachePort - кэш резолвленных шаблонов. Кэшируется только результат резолва
// (включая отрицательный - "шаблона нет"), занятые слоты не кэшируются никогда:
// их актуальность критична для pre-check бронирования.
type CachePort interface {
	GetTemplate(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, bool)
	StoreTemplate(ctx context.Context, doctorID int64, date json_types.Date, template *domain.WorkTemplate)

	// Сброс всех дат врача при изменении его расписания или календаря
	InvalidateDoctor(ctx context.Context, doctorID int64)
}
