package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

func (a *PostgresAdapter) GetBookedTimes(ctx context.Context, doctorID int64, date json_types.Date) (map[string]struct{}, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.pool.Query(ctx, `SELECT appointment_time::text
		FROM appointments_v2
		WHERE doctor_id = $1 AND appointment_date = $2::date AND status = ANY($3)`,
		doctorID, date.String(), a.occupying)
	if err != nil {
		return nil, a.storeErr("appointments.booked", err)
	}
	defer rows.Close()

	booked := make(map[string]struct{})
	for rows.Next() {
		var timeStr string
		if err := rows.Scan(&timeStr); err != nil {
			return nil, a.storeErr("appointments.booked", err)
		}
		t, err := json_types.ParseTime(timeStr)
		if err != nil {
			return nil, a.storeErr("appointments.booked", err)
		}
		booked[t.Short()] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, a.storeErr("appointments.booked", err)
	}
	return booked, nil
}

func (a *PostgresAdapter) GetBookedTimesRange(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]map[string]struct{}, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.pool.Query(ctx, `SELECT appointment_date::text, appointment_time::text
		FROM appointments_v2
		WHERE doctor_id = $1 AND appointment_date >= $2::date AND appointment_date <= $3::date
			AND status = ANY($4)`,
		doctorID, from.String(), to.String(), a.occupying)
	if err != nil {
		return nil, a.storeErr("appointments.booked_range", err)
	}
	defer rows.Close()

	booked := make(map[string]map[string]struct{})
	for rows.Next() {
		var dateStr, timeStr string
		if err := rows.Scan(&dateStr, &timeStr); err != nil {
			return nil, a.storeErr("appointments.booked_range", err)
		}
		t, err := json_types.ParseTime(timeStr)
		if err != nil {
			return nil, a.storeErr("appointments.booked_range", err)
		}
		if booked[dateStr] == nil {
			booked[dateStr] = make(map[string]struct{})
		}
		booked[dateStr][t.Short()] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, a.storeErr("appointments.booked_range", err)
	}
	return booked, nil
}

func (a *PostgresAdapter) CountOccupying(ctx context.Context, doctorID int64, date json_types.Date, timeOfDay json_types.Time, excludeID *int64) (int, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	return a.countOccupying(ctx, a.pool, doctorID, date, timeOfDay, excludeID)
}

// countOccupying работает и через пул, и внутри транзакции переноса
func (a *PostgresAdapter) countOccupying(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, doctorID int64, date json_types.Date, timeOfDay json_types.Time, excludeID *int64) (int, error) {
	query := `SELECT COUNT(*) FROM appointments_v2
		WHERE doctor_id = $1 AND appointment_date = $2::date AND appointment_time = $3::time
			AND status = ANY($4)`
	args := []any{doctorID, date.String(), timeOfDay.Time.Format("15:04:05"), a.occupying}

	if excludeID != nil {
		query += ` AND id != $5`
		args = append(args, *excludeID)
	}

	var count int
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, a.storeErr("appointments.count_occupying", err)
	}
	return count, nil
}

func (a *PostgresAdapter) GetAppointmentByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	var appt domain.Appointment
	var dateStr, timeStr string
	var snils, oms, description *string

	err := a.pool.QueryRow(ctx, `SELECT id, doctor_id, appointment_date::text, appointment_time::text,
			patient_name, patient_phone, patient_snils, patient_oms, description, status
		FROM appointments_v2 WHERE id = $1`, id).
		Scan(&appt.ID, &appt.DoctorID, &dateStr, &timeStr,
			&appt.PatientName, &appt.PatientPhone, &snils, &oms, &description, &appt.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, a.storeErr("appointments.get", err)
	}

	if appt.Date, err = json_types.ParseDate(dateStr); err != nil {
		return nil, a.storeErr("appointments.get", err)
	}
	if appt.Time, err = json_types.ParseTime(timeStr); err != nil {
		return nil, a.storeErr("appointments.get", err)
	}
	if snils != nil {
		appt.PatientSnils = *snils
	}
	if oms != nil {
		appt.PatientOms = *oms
	}
	if description != nil {
		appt.Description = *description
	}
	return &appt, nil
}

func (a *PostgresAdapter) InsertIfFree(ctx context.Context, appointment *domain.Appointment) (int64, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	var id int64
	err := a.pool.QueryRow(ctx, `INSERT INTO appointments_v2
			(doctor_id, appointment_date, appointment_time, patient_name, patient_phone,
			 patient_snils, patient_oms, description, status)
		VALUES ($1, $2::date, $3::time, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		appointment.DoctorID, appointment.Date.String(), appointment.Time.Time.Format("15:04:05"),
		appointment.PatientName, appointment.PatientPhone,
		appointment.PatientSnils, appointment.PatientOms, appointment.Description,
		string(appointment.Status)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &domain.SlotTakenError{
				DoctorID: appointment.DoctorID,
				Date:     appointment.Date.String(),
				Time:     appointment.Time.Short(),
			}
		}
		return 0, a.storeErr("appointments.insert", err)
	}
	return id, nil
}

// Move выполняет перенос одной транзакцией: блокировка строки, проверка
// конфликта без учета самой записи, обновление. Уникальный индекс по
// активному слоту остается последней линией обороны от гонки.
func (a *PostgresAdapter) Move(ctx context.Context, id int64, newDate json_types.Date, newTime json_types.Time) error {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return a.storeErr("appointments.move", err)
	}
	defer tx.Rollback(ctx)

	var doctorID int64
	err = tx.QueryRow(ctx, `SELECT doctor_id FROM appointments_v2 WHERE id = $1 FOR UPDATE`, id).
		Scan(&doctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAppointmentNotFound
		}
		return a.storeErr("appointments.move", err)
	}

	count, err := a.countOccupying(ctx, tx, doctorID, newDate, newTime, &id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.SlotTakenError{DoctorID: doctorID, Date: newDate.String(), Time: newTime.Short()}
	}

	_, err = tx.Exec(ctx, `UPDATE appointments_v2
		SET appointment_date = $2::date, appointment_time = $3::time
		WHERE id = $1`,
		id, newDate.String(), newTime.Time.Format("15:04:05"))
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SlotTakenError{DoctorID: doctorID, Date: newDate.String(), Time: newTime.Short()}
		}
		return a.storeErr("appointments.move", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return a.storeErr("appointments.move", err)
	}

	a.logger.Debug("appointments.move.committed", out.LogFields{
		"appointmentId": id,
		"newDate":       newDate.String(),
		"newTime":       newTime.Short(),
	})
	return nil
}

func (a *PostgresAdapter) Cancel(ctx context.Context, id int64) error {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	tag, err := a.pool.Exec(ctx, `UPDATE appointments_v2 SET status = 'cancelled' WHERE id = $1`, id)
	if err != nil {
		return a.storeErr("appointments.cancel", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}
