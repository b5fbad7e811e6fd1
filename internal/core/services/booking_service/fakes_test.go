package booking_service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
	"github.com/hospitalred/appointment-booking-service/internal/utils"
)

type nopLogger struct{}

func (l nopLogger) Debug(event string, fields out.LogFields) {}
func (l nopLogger) Info(event string, fields out.LogFields)  {}
func (l nopLogger) Warn(event string, fields out.LogFields)  {}
func (l nopLogger) Error(event string, fields out.LogFields) {}

func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Booking.OccupyingStatuses = domain.DefaultOccupyingStatuses
	cfg.Booking.MaxRangeDays = 62
	return cfg
}

func mustDate(t *testing.T, s string) json_types.Date {
	t.Helper()
	d, err := json_types.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustTime(t *testing.T, s string) json_types.Time {
	t.Helper()
	tt, err := json_types.ParseTime(s)
	require.NoError(t, err)
	return tt
}

func tmpl(t *testing.T, start, end string, durationMinutes int) *domain.WorkTemplate {
	t.Helper()
	return &domain.WorkTemplate{
		StartTime:           mustTime(t, start),
		EndTime:             mustTime(t, end),
		SlotDurationMinutes: durationMinutes,
		Active:              true,
	}
}

func tmplWithBreak(t *testing.T, start, end, breakStart, breakEnd string, durationMinutes int) *domain.WorkTemplate {
	t.Helper()
	template := tmpl(t, start, end, durationMinutes)
	bs := mustTime(t, breakStart)
	be := mustTime(t, breakEnd)
	template.BreakStart = &bs
	template.BreakEnd = &be
	return template
}

// ---- фейковое хранилище расписаний ----

type fakeScheduleStore struct {
	// dayOffs и dailies с ключом doctorID:date
	dayOffs  map[string]bool
	dailies  map[string]*domain.WorkTemplate
	weeklies map[int64]map[int]*domain.WorkTemplate

	dailyRangeCalls  int
	weeklyListCalls  int
	dayOffRangeCalls int
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{
		dayOffs:  make(map[string]bool),
		dailies:  make(map[string]*domain.WorkTemplate),
		weeklies: make(map[int64]map[int]*domain.WorkTemplate),
	}
}

func scheduleKey(doctorID int64, date json_types.Date) string {
	return fmt.Sprintf("%d:%s", doctorID, date.String())
}

func (f *fakeScheduleStore) GetDailyOverride(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, error) {
	return f.dailies[scheduleKey(doctorID, date)], nil
}

func (f *fakeScheduleStore) GetDailyOverrides(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]*domain.WorkTemplate, error) {
	f.dailyRangeCalls++
	result := make(map[string]*domain.WorkTemplate)
	for _, day := range utils.DaysBetween(from, to) {
		if template := f.dailies[scheduleKey(doctorID, day)]; template != nil {
			result[day.String()] = template
		}
	}
	return result, nil
}

func (f *fakeScheduleStore) GetWeeklyTemplate(ctx context.Context, doctorID int64, dayOfWeek int) (*domain.WorkTemplate, error) {
	return f.weeklies[doctorID][dayOfWeek], nil
}

func (f *fakeScheduleStore) GetWeeklyTemplates(ctx context.Context, doctorID int64) (map[int]*domain.WorkTemplate, error) {
	f.weeklyListCalls++
	result := make(map[int]*domain.WorkTemplate)
	for dow, template := range f.weeklies[doctorID] {
		result[dow] = template
	}
	return result, nil
}

func (f *fakeScheduleStore) IsDayOff(ctx context.Context, doctorID int64, date json_types.Date) (bool, error) {
	return f.dayOffs[scheduleKey(doctorID, date)], nil
}

func (f *fakeScheduleStore) GetDayOffs(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]bool, error) {
	f.dayOffRangeCalls++
	result := make(map[string]bool)
	for _, day := range utils.DaysBetween(from, to) {
		if f.dayOffs[scheduleKey(doctorID, day)] {
			result[day.String()] = true
		}
	}
	return result, nil
}

// ---- фейковое хранилище записей ----

// fakeAppointmentStore воспроизводит контракт уникального индекса:
// вставка и перенос проверяют занятость под общим мьютексом
type fakeAppointmentStore struct {
	mu           sync.Mutex
	nextID       int64
	appointments map[int64]*domain.Appointment
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{
		nextID:       1,
		appointments: make(map[int64]*domain.Appointment),
	}
}

func isOccupying(status domain.AppointmentStatus) bool {
	for _, s := range domain.DefaultOccupyingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeAppointmentStore) countLocked(doctorID int64, date json_types.Date, timeOfDay json_types.Time, excludeID *int64) int {
	count := 0
	for id, appt := range f.appointments {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if appt.DoctorID == doctorID &&
			appt.Date.String() == date.String() &&
			appt.Time.Short() == timeOfDay.Short() &&
			isOccupying(appt.Status) {
			count++
		}
	}
	return count
}

func (f *fakeAppointmentStore) GetBookedTimes(ctx context.Context, doctorID int64, date json_types.Date) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booked := make(map[string]struct{})
	for _, appt := range f.appointments {
		if appt.DoctorID == doctorID && appt.Date.String() == date.String() && isOccupying(appt.Status) {
			booked[appt.Time.Short()] = struct{}{}
		}
	}
	return booked, nil
}

func (f *fakeAppointmentStore) GetBookedTimesRange(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booked := make(map[string]map[string]struct{})
	for _, appt := range f.appointments {
		if appt.DoctorID != doctorID || !isOccupying(appt.Status) {
			continue
		}
		if appt.Date.Before(from) || appt.Date.After(to) {
			continue
		}
		key := appt.Date.String()
		if booked[key] == nil {
			booked[key] = make(map[string]struct{})
		}
		booked[key][appt.Time.Short()] = struct{}{}
	}
	return booked, nil
}

func (f *fakeAppointmentStore) CountOccupying(ctx context.Context, doctorID int64, date json_types.Date, timeOfDay json_types.Time, excludeID *int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked(doctorID, date, timeOfDay, excludeID), nil
}

func (f *fakeAppointmentStore) GetAppointmentByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	appt, exists := f.appointments[id]
	if !exists {
		return nil, domain.ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (f *fakeAppointmentStore) InsertIfFree(ctx context.Context, appointment *domain.Appointment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.countLocked(appointment.DoctorID, appointment.Date, appointment.Time, nil) > 0 {
		return 0, &domain.SlotTakenError{
			DoctorID: appointment.DoctorID,
			Date:     appointment.Date.String(),
			Time:     appointment.Time.Short(),
		}
	}

	id := f.nextID
	f.nextID++
	copied := *appointment
	copied.ID = id
	f.appointments[id] = &copied
	return id, nil
}

func (f *fakeAppointmentStore) Move(ctx context.Context, id int64, newDate json_types.Date, newTime json_types.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	appt, exists := f.appointments[id]
	if !exists {
		return domain.ErrAppointmentNotFound
	}
	if f.countLocked(appt.DoctorID, newDate, newTime, &id) > 0 {
		return &domain.SlotTakenError{DoctorID: appt.DoctorID, Date: newDate.String(), Time: newTime.Short()}
	}
	appt.Date = newDate
	appt.Time = newTime
	return nil
}

func (f *fakeAppointmentStore) Cancel(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	appt, exists := f.appointments[id]
	if !exists {
		return domain.ErrAppointmentNotFound
	}
	appt.Status = domain.AppointmentStatusCancelled
	return nil
}

func newTestService(scheduleStore *fakeScheduleStore, appointmentStore *fakeAppointmentStore) *BookingService {
	return NewBookingService(scheduleStore, appointmentStore, nil, testConfig(), nopLogger{})
}
