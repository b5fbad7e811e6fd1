package booking_service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
)

func bookingRequest(date, timeOfDay string) domain.BookingRequest {
	return domain.BookingRequest{
		DoctorID:     testDoctorID,
		Date:         date,
		Time:         timeOfDay,
		PatientName:  "Иванов Иван Иванович",
		PatientPhone: "+7 900 000-00-00",
	}
}

func TestBook_Success(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)
	assert.Positive(t, id)

	appt, err := store.GetAppointmentByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentStatusScheduled, appt.Status)
	assert.Equal(t, "10:00", appt.Time.Short())
}

func TestBook_SlotTaken(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	_, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)

	_, err = service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))

	var taken *domain.SlotTakenError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, "10:00", taken.Time)

	// Проигравший запрос не оставляет строки
	booked, err := store.GetBookedTimes(context.Background(), testDoctorID, mustDate(t, "2026-09-14"))
	require.NoError(t, err)
	assert.Len(t, booked, 1)
}

func TestBook_InvalidInput(t *testing.T) {
	service := newTestService(newFakeScheduleStore(), newFakeAppointmentStore())

	cases := []struct {
		name string
		req  domain.BookingRequest
	}{
		{"missing doctor", domain.BookingRequest{Date: "2026-09-14", Time: "10:00", PatientName: "a", PatientPhone: "b"}},
		{"bad date", bookingRequest("14.09.2026", "10:00")},
		{"bad time", bookingRequest("2026-09-14", "25:99")},
		{"missing patient", domain.BookingRequest{DoctorID: testDoctorID, Date: "2026-09-14", Time: "10:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Book(context.Background(), tc.req)

			var invalidInput *domain.InvalidInputError
			require.ErrorAs(t, err, &invalidInput)
		})
	}
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Book(context.Background(), bookingRequest("2026-09-14", "11:30"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var taken *domain.SlotTakenError
		require.ErrorAs(t, err, &taken)
	}
	assert.Equal(t, 1, succeeded, "exactly one booking must win the slot")
}

func TestCheckSlot_OccupiedAndAfterCancel(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)

	check, err := service.CheckSlot(context.Background(), testDoctorID, "2026-09-14", "10:00", nil)
	require.NoError(t, err)
	assert.False(t, check.Available)
	assert.NotEmpty(t, check.Reason)

	require.NoError(t, service.Cancel(context.Background(), id))

	// Отмененная запись слот не удерживает
	check, err = service.CheckSlot(context.Background(), testDoctorID, "2026-09-14", "10:00", nil)
	require.NoError(t, err)
	assert.True(t, check.Available)
}

func TestCheckSlot_ExcludeSelf(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)

	check, err := service.CheckSlot(context.Background(), testDoctorID, "2026-09-14", "10:00", &id)
	require.NoError(t, err)
	assert.True(t, check.Available, "appointment must not conflict with itself")
}

func TestReschedule_Success(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)

	require.NoError(t, service.Reschedule(context.Background(), id, "2026-09-15", "11:00"))

	appt, err := store.GetAppointmentByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", appt.Date.String())
	assert.Equal(t, "11:00", appt.Time.Short())
}

func TestReschedule_ToOwnSlot(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)

	// Перенос на собственный слот не конфликтует сам с собой
	require.NoError(t, service.Reschedule(context.Background(), id, "2026-09-14", "10:00"))
}

func TestReschedule_ConflictLeavesAppointmentUnchanged(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	_, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)
	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:30"))
	require.NoError(t, err)

	err = service.Reschedule(context.Background(), id, "2026-09-14", "10:00")

	var taken *domain.SlotTakenError
	require.ErrorAs(t, err, &taken)

	appt, err := store.GetAppointmentByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "10:30", appt.Time.Short())
}

func TestReschedule_UnknownAppointment(t *testing.T) {
	service := newTestService(newFakeScheduleStore(), newFakeAppointmentStore())

	err := service.Reschedule(context.Background(), 12345, "2026-09-14", "10:00")
	require.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestCancel_UnknownAppointment(t *testing.T) {
	service := newTestService(newFakeScheduleStore(), newFakeAppointmentStore())

	err := service.Cancel(context.Background(), 12345)
	require.ErrorIs(t, err, domain.ErrAppointmentNotFound)
}

func TestCancel_FreesSlotForRebooking(t *testing.T) {
	store := newFakeAppointmentStore()
	service := newTestService(newFakeScheduleStore(), store)

	id, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)
	require.NoError(t, service.Cancel(context.Background(), id))

	// Тот же слот можно забронировать заново
	newID, err := service.Book(context.Background(), bookingRequest("2026-09-14", "10:00"))
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)
}

func TestGetSlots_BookedSlotsHidden(t *testing.T) {
	scheduleStore := newFakeScheduleStore()
	date := mustDate(t, "2026-09-14")
	scheduleStore.dailies[scheduleKey(testDoctorID, date)] = tmpl(t, "09:00:00", "11:00:00", 30)

	store := newFakeAppointmentStore()
	service := newTestService(scheduleStore, store)

	_, err := service.Book(context.Background(), bookingRequest("2026-09-14", "09:30"))
	require.NoError(t, err)

	slots, err := service.GetSlots(context.Background(), testDoctorID, "2026-09-14")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, slots)
}
