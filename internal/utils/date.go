package utils

import (
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// DaysBetween возвращает все даты диапазона [from, to] включительно,
// по возрастанию. Для from > to возвращает пустой список.
func DaysBetween(from, to json_types.Date) []json_types.Date {
	days := make([]json_types.Date, 0)
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
