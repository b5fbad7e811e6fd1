package booking_service

import (
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// GenerateSlots перечисляет свободные слоты шаблона по возрастанию.
// Курсор идет от начала рабочего окна с шагом длительности слота;
// времена внутри перерыва и занятые времена пропускаются. Оба окна
// полуоткрытые: [start, end) и [break_start, break_end). Неполный слот
// в хвосте окна отбрасывается: эмитятся только слоты, целиком лежащие
// в рабочем окне, так что окно, не кратное длительности, дает
// floor((end-start)/duration) слотов.
func GenerateSlots(template *domain.WorkTemplate, booked map[string]struct{}) []json_types.Time {
	slots := make([]json_types.Time, 0)
	if template == nil {
		return slots
	}

	duration := template.SlotDuration()
	if duration <= 0 {
		return slots
	}

	for cursor := template.StartTime.Time; !cursor.Add(duration).After(template.EndTime.Time); cursor = cursor.Add(duration) {
		if template.HasBreak() &&
			!cursor.Before(template.BreakStart.Time) && cursor.Before(template.BreakEnd.Time) {
			continue
		}

		if _, isBooked := booked[cursor.Format("15:04")]; isBooked {
			continue
		}

		slots = append(slots, json_types.Time{Time: cursor})
	}

	return slots
}

// GenerateDaySlots - вариант для bulk-ответа: свободные слоты плюс счетчики.
// Total - сколько слотов порождает шаблон без учета занятости,
// Booked - сколько из них занято. Для nil-шаблона все по нулям.
func GenerateDaySlots(template *domain.WorkTemplate, booked map[string]struct{}) domain.DaySlots {
	day := domain.DaySlots{Slots: make([]string, 0)}
	if template == nil {
		return day
	}

	all := GenerateSlots(template, nil)
	free := GenerateSlots(template, booked)

	for _, slot := range free {
		day.Slots = append(day.Slots, slot.Short())
	}
	day.Total = len(all)
	day.Booked = len(all) - len(free)

	return day
}
