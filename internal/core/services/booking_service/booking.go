package booking_service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

// CheckSlot - чистый предикат занятости без побочных эффектов.
// Слот свободен, если нет ни одной удерживающей записи с точно таким
// (doctor, date, time), не считая исключенной excludeID.
func (s *BookingService) CheckSlot(ctx context.Context, doctorID int64, date, timeOfDay string, excludeID *int64) (domain.SlotCheck, error) {
	if err := validateDoctorID(doctorID); err != nil {
		return domain.SlotCheck{}, err
	}
	day, err := parseDateParam(date)
	if err != nil {
		return domain.SlotCheck{}, err
	}
	slotTime, err := parseTimeParam(timeOfDay)
	if err != nil {
		return domain.SlotCheck{}, err
	}

	count, err := s.appointmentStore.CountOccupying(ctx, doctorID, day, slotTime, excludeID)
	if err != nil {
		s.logger.Error("slot.check.fetch_failed", out.LogFields{
			"doctorId": doctorID,
			"date":     day.String(),
			"time":     slotTime.Short(),
			"error":    err.Error(),
		})
		return domain.SlotCheck{}, fmt.Errorf("slot.check.fetch_failed: %w", err)
	}

	if count > 0 {
		return domain.SlotCheck{
			Available: false,
			Reason:    "slot is already taken",
		}, nil
	}

	return domain.SlotCheck{Available: true}, nil
}

// Book создает запись. Pre-check дает раннее человеческое сообщение, но
// гонку двух бронирований закрывает не он, а частичный уникальный индекс
// по активному слоту: проигравшая вставка получает *domain.SlotTakenError,
// строка при этом не создается.
func (s *BookingService) Book(ctx context.Context, req domain.BookingRequest) (int64, error) {
	if err := validateDoctorID(req.DoctorID); err != nil {
		return 0, err
	}
	day, err := parseDateParam(req.Date)
	if err != nil {
		return 0, err
	}
	slotTime, err := parseTimeParam(req.Time)
	if err != nil {
		return 0, err
	}
	if req.PatientName == "" || req.PatientPhone == "" {
		return 0, domain.NewInvalidInputError("patient_name and patient_phone are required")
	}

	if req.RequestID == uuid.Nil {
		req.RequestID = uuid.New()
	}
	logger := s.logger.WithFields(out.LogFields{"requestId": req.RequestID.String()})

	logger.Info("booking.create.started", out.LogFields{
		"doctorId": req.DoctorID,
		"date":     day.String(),
		"time":     slotTime.Short(),
	})

	check, err := s.CheckSlot(ctx, req.DoctorID, req.Date, req.Time, nil)
	if err != nil {
		return 0, err
	}
	if !check.Available {
		logger.Info("booking.create.slot_taken_precheck", out.LogFields{
			"doctorId": req.DoctorID,
			"date":     day.String(),
			"time":     slotTime.Short(),
		})
		return 0, &domain.SlotTakenError{DoctorID: req.DoctorID, Date: day.String(), Time: slotTime.Short()}
	}

	appointment := &domain.Appointment{
		DoctorID:     req.DoctorID,
		Date:         day,
		Time:         slotTime,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		PatientSnils: req.PatientSnils,
		PatientOms:   req.PatientOms,
		Description:  req.Description,
		Status:       domain.AppointmentStatusScheduled,
	}

	id, err := s.appointmentStore.InsertIfFree(ctx, appointment)
	if err != nil {
		var taken *domain.SlotTakenError
		if errors.As(err, &taken) {
			// Слот увели между pre-check и вставкой - ожидаемый исход,
			// не системная ошибка
			logger.Info("booking.create.slot_taken", out.LogFields{
				"doctorId": req.DoctorID,
				"date":     day.String(),
				"time":     slotTime.Short(),
			})
			return 0, err
		}
		logger.Error("booking.create.insert_failed", out.LogFields{
			"doctorId": req.DoctorID,
			"error":    err.Error(),
		})
		return 0, fmt.Errorf("booking.create.insert_failed: %w", err)
	}

	logger.Info("booking.create.finished", out.LogFields{
		"appointmentId": id,
	})

	return id, nil
}

// Reschedule переносит запись на новое время. Проверка конфликта исключает
// саму переносимую запись и выполняется в одной транзакции с обновлением;
// на конфликте запись остается полностью без изменений.
func (s *BookingService) Reschedule(ctx context.Context, appointmentID int64, newDate, newTime string) error {
	if appointmentID <= 0 {
		return domain.NewInvalidInputError("appointment id is required")
	}
	day, err := parseDateParam(newDate)
	if err != nil {
		return err
	}
	slotTime, err := parseTimeParam(newTime)
	if err != nil {
		return err
	}

	s.logger.Info("booking.reschedule.started", out.LogFields{
		"appointmentId": appointmentID,
		"newDate":       day.String(),
		"newTime":       slotTime.Short(),
	})

	if err := s.appointmentStore.Move(ctx, appointmentID, day, slotTime); err != nil {
		var taken *domain.SlotTakenError
		switch {
		case errors.As(err, &taken):
			s.logger.Info("booking.reschedule.slot_taken", out.LogFields{
				"appointmentId": appointmentID,
				"newDate":       day.String(),
				"newTime":       slotTime.Short(),
			})
			return err
		case errors.Is(err, domain.ErrAppointmentNotFound):
			return err
		default:
			s.logger.Error("booking.reschedule.failed", out.LogFields{
				"appointmentId": appointmentID,
				"error":         err.Error(),
			})
			return fmt.Errorf("booking.reschedule.failed: %w", err)
		}
	}

	s.logger.Info("booking.reschedule.finished", out.LogFields{
		"appointmentId": appointmentID,
	})

	return nil
}

// Cancel переводит запись в cancelled, освобождая слот.
func (s *BookingService) Cancel(ctx context.Context, appointmentID int64) error {
	if appointmentID <= 0 {
		return domain.NewInvalidInputError("appointment id is required")
	}

	if err := s.appointmentStore.Cancel(ctx, appointmentID); err != nil {
		if errors.Is(err, domain.ErrAppointmentNotFound) {
			return err
		}
		s.logger.Error("booking.cancel.failed", out.LogFields{
			"appointmentId": appointmentID,
			"error":         err.Error(),
		})
		return fmt.Errorf("booking.cancel.failed: %w", err)
	}

	s.logger.Info("booking.cancel.finished", out.LogFields{
		"appointmentId": appointmentID,
	})

	return nil
}
