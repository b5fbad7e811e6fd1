package domain

import (
	"time"

	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

type TemplateSource string

const (
	// Шаблон на конкретную дату, имеет приоритет над еженедельным
	TemplateSourceDaily TemplateSource = "daily"
	// Еженедельный повторяющийся шаблон
	TemplateSourceWeekly TemplateSource = "weekly"
)

// WorkTemplate - действующий шаблон рабочего времени врача на одну дату.
// Рабочий интервал [StartTime, EndTime) и перерыв [BreakStart, BreakEnd)
// полуоткрытые. Перерыв либо задан полностью, либо отсутствует.
type WorkTemplate struct {
	ID                  int64            `json:"id"`
	DoctorID            int64            `json:"doctor_id"`
	Date                json_types.Date  `json:"date"`
	DayOfWeek           int              `json:"day_of_week"`
	StartTime           json_types.Time  `json:"start_time"`
	EndTime             json_types.Time  `json:"end_time"`
	BreakStart          *json_types.Time `json:"break_start_time,omitempty"`
	BreakEnd            *json_types.Time `json:"break_end_time,omitempty"`
	SlotDurationMinutes int              `json:"slot_duration"`
	Active              bool             `json:"is_active"`
	Source              TemplateSource   `json:"source"`
}

func (t *WorkTemplate) HasBreak() bool {
	return t.BreakStart != nil && t.BreakEnd != nil
}

func (t *WorkTemplate) SlotDuration() time.Duration {
	return time.Duration(t.SlotDurationMinutes) * time.Minute
}

// DayOff - запись календаря врача, помечающая дату как нерабочую.
// Перекрывает любые шаблоны расписания на эту дату.
type DayOff struct {
	DoctorID int64           `json:"doctor_id"`
	Date     json_types.Date `json:"calendar_date"`
	Note     string          `json:"note,omitempty"`
}

// ScheduleDayOfWeek возвращает день недели по соглашению Sunday=0,
// в котором еженедельные шаблоны хранятся в doctor_schedules.
// Нумерация совпадает с time.Weekday; соглашение зафиксировано здесь,
// чтобы не расползалось по коду в виде inline-арифметики.
func ScheduleDayOfWeek(date time.Time) int {
	return int(date.Weekday())
}
