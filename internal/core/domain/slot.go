package domain

import (
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// Slot - одно свободное время приема, производное значение.
// Слоты нигде не хранятся, существуют только в ответе на запрос.
type Slot struct {
	Time json_types.Time `json:"time"`
}

// DaySlots - слоты одной даты с количеством сгенерированных и занятых.
// Для дат без шаблона Slots - пустой список, не nil и не пропущенный ключ.
type DaySlots struct {
	Slots  []string `json:"slots"`
	Total  int      `json:"total"`
	Booked int      `json:"booked"`
}
