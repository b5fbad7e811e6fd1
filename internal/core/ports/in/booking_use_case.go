package in

import (
	"context"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
)

type BookingUseCase interface {
	// Свободные слоты врача на одну дату, по возрастанию, формат HH:MM
	GetSlots(ctx context.Context, doctorID int64, date string) ([]string, error)

	// Свободные слоты на диапазон дат. В ответе ключ на каждую дату диапазона,
	// даты без шаблона - с пустым списком
	GetSlotsRange(ctx context.Context, doctorID int64, from, to string) (map[string]domain.DaySlots, error)

	// Проверка одного слота; excludeID исключает запись при переносе
	CheckSlot(ctx context.Context, doctorID int64, date, timeOfDay string, excludeID *int64) (domain.SlotCheck, error)

	// Создание записи, на конфликте - *domain.SlotTakenError
	Book(ctx context.Context, req domain.BookingRequest) (int64, error)

	// Перенос записи на новое время, на конфликте запись не меняется
	Reschedule(ctx context.Context, appointmentID int64, newDate, newTime string) error

	Cancel(ctx context.Context, appointmentID int64) error
}
