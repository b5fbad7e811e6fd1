package booking_service

import (
	"context"
	"fmt"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
	"github.com/hospitalred/appointment-booking-service/internal/utils"
)

type BookingService struct {
	scheduleStore    out.ScheduleStorePort
	appointmentStore out.AppointmentStorePort
	cachePort        out.CachePort
	logger           out.LoggerPort
	cfg              *config.Config
}

func NewBookingService(
	scheduleStore out.ScheduleStorePort,
	appointmentStore out.AppointmentStorePort,
	cachePort out.CachePort,
	cfg *config.Config,
	logger out.LoggerPort,
) *BookingService {
	return &BookingService{
		scheduleStore:    scheduleStore,
		appointmentStore: appointmentStore,
		cachePort:        cachePort,
		cfg:              cfg,
		logger:           logger.WithModule("BookingService"),
	}
}

func (s *BookingService) GetSlots(ctx context.Context, doctorID int64, date string) ([]string, error) {
	if err := validateDoctorID(doctorID); err != nil {
		return nil, err
	}
	day, err := parseDateParam(date)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("slots.get.started", out.LogFields{
		"doctorId": doctorID,
		"date":     day.String(),
	})

	template, err := s.resolveTemplate(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("slots.get.resolve_failed: %w", err)
	}

	// Нет шаблона - нет слотов, это не ошибка
	if template == nil {
		return []string{}, nil
	}

	booked, err := s.appointmentStore.GetBookedTimes(ctx, doctorID, day)
	if err != nil {
		s.logger.Error("slots.get.booked.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"date":     day.String(),
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("slots.get.booked.fetch_failed: %w", err)
	}

	slots := GenerateSlots(template, booked)

	result := make([]string, 0, len(slots))
	for _, slot := range slots {
		result = append(result, slot.Short())
	}

	s.logger.Debug("slots.get.finished", out.LogFields{
		"doctorId":   doctorID,
		"date":       day.String(),
		"slotsCount": len(result),
	})

	return result, nil
}

func (s *BookingService) GetSlotsRange(ctx context.Context, doctorID int64, from, to string) (map[string]domain.DaySlots, error) {
	if err := validateDoctorID(doctorID); err != nil {
		return nil, err
	}
	fromDay, err := parseDateParam(from)
	if err != nil {
		return nil, err
	}
	toDay, err := parseDateParam(to)
	if err != nil {
		return nil, err
	}
	if toDay.Before(fromDay) {
		return nil, domain.NewInvalidInputError("start_date %s is after end_date %s", fromDay, toDay)
	}

	days := utils.DaysBetween(fromDay, toDay)
	if len(days) > s.cfg.Booking.MaxRangeDays {
		return nil, domain.NewInvalidInputError("date range is too wide: %d days, max %d", len(days), s.cfg.Booking.MaxRangeDays)
	}

	s.logger.Debug("slots.range.started", out.LogFields{
		"doctorId": doctorID,
		"from":     fromDay.String(),
		"to":       toDay.String(),
		"days":     len(days),
	})

	// Один проход по каждому источнику на весь диапазон,
	// без похода в хранилище на каждую дату
	templates, err := s.resolveTemplatesRange(ctx, doctorID, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("slots.range.resolve_failed: %w", err)
	}

	bookedByDay, err := s.appointmentStore.GetBookedTimesRange(ctx, doctorID, fromDay, toDay)
	if err != nil {
		s.logger.Error("slots.range.booked.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("slots.range.booked.fetch_failed: %w", err)
	}

	result := make(map[string]domain.DaySlots, len(days))
	for _, day := range days {
		result[day.String()] = GenerateDaySlots(templates[day.String()], bookedByDay[day.String()])
	}

	return result, nil
}

func parseDateParam(date string) (json_types.Date, error) {
	if date == "" {
		return json_types.Date{}, domain.NewInvalidInputError("date is required")
	}
	day, err := json_types.ParseDate(date)
	if err != nil {
		return json_types.Date{}, domain.NewInvalidInputError("invalid date %q, expected YYYY-MM-DD", date)
	}
	return day, nil
}

func parseTimeParam(timeOfDay string) (json_types.Time, error) {
	if timeOfDay == "" {
		return json_types.Time{}, domain.NewInvalidInputError("time is required")
	}
	t, err := json_types.ParseTime(timeOfDay)
	if err != nil {
		return json_types.Time{}, domain.NewInvalidInputError("invalid time %q, expected HH:MM", timeOfDay)
	}
	return t, nil
}

func validateDoctorID(doctorID int64) error {
	if doctorID <= 0 {
		return domain.NewInvalidInputError("doctor_id is required")
	}
	return nil
}
