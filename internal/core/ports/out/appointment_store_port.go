package out

import (
	"context"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// AppointmentStorePort - доступ к записям на прием. Занятость слота считается
// только по записям с "удерживающим" статусом (см. BOOKING_OCCUPYING_STATUSES).
type AppointmentStorePort interface {
	// Времена занятых слотов одной даты, ключ - HH:MM
	GetBookedTimes(ctx context.Context, doctorID int64, date json_types.Date) (map[string]struct{}, error)
	// То же для диапазона дат, внешний ключ - YYYY-MM-DD
	GetBookedTimesRange(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]map[string]struct{}, error)

	// Число удерживающих записей на точное (doctor, date, time),
	// excludeID исключает запись при переносе на свой же слот
	CountOccupying(ctx context.Context, doctorID int64, date json_types.Date, timeOfDay json_types.Time, excludeID *int64) (int, error)

	GetAppointmentByID(ctx context.Context, id int64) (*domain.Appointment, error)

	// Атомарная вставка: при нарушении уникальности активного слота
	// возвращает *domain.SlotTakenError, строка не создается
	InsertIfFree(ctx context.Context, appointment *domain.Appointment) (int64, error)

	// Атомарный перенос: при конфликте запись остается без изменений,
	// возвращается *domain.SlotTakenError
	Move(ctx context.Context, id int64, newDate json_types.Date, newTime json_types.Time) error

	Cancel(ctx context.Context, id int64) error
}
