package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

// Времена и даты читаются как text и разбираются через json_types:
// в схеме они лежат как TIME (HH:MM:SS) и DATE, наружу нужна минутная точность.

const dailyCols = `id, doctor_id, schedule_date::text, start_time::text, end_time::text,
	break_start_time::text, break_end_time::text, slot_duration, is_active`

const weeklyCols = `id, doctor_id, day_of_week, start_time::text, end_time::text,
	break_start_time::text, break_end_time::text, slot_duration, is_active`

func scanDailyTemplate(row pgx.Row) (*domain.WorkTemplate, error) {
	var t domain.WorkTemplate
	var dateStr, startStr, endStr string
	var breakStartStr, breakEndStr *string

	err := row.Scan(&t.ID, &t.DoctorID, &dateStr, &startStr, &endStr,
		&breakStartStr, &breakEndStr, &t.SlotDurationMinutes, &t.Active)
	if err != nil {
		return nil, err
	}

	t.Source = domain.TemplateSourceDaily
	if t.Date, err = json_types.ParseDate(dateStr); err != nil {
		return nil, err
	}
	return fillTemplateTimes(&t, startStr, endStr, breakStartStr, breakEndStr)
}

func scanWeeklyTemplate(row pgx.Row) (*domain.WorkTemplate, error) {
	var t domain.WorkTemplate
	var startStr, endStr string
	var breakStartStr, breakEndStr *string

	err := row.Scan(&t.ID, &t.DoctorID, &t.DayOfWeek, &startStr, &endStr,
		&breakStartStr, &breakEndStr, &t.SlotDurationMinutes, &t.Active)
	if err != nil {
		return nil, err
	}

	t.Source = domain.TemplateSourceWeekly
	return fillTemplateTimes(&t, startStr, endStr, breakStartStr, breakEndStr)
}

func fillTemplateTimes(t *domain.WorkTemplate, startStr, endStr string, breakStartStr, breakEndStr *string) (*domain.WorkTemplate, error) {
	var err error
	if t.StartTime, err = json_types.ParseTime(startStr); err != nil {
		return nil, err
	}
	if t.EndTime, err = json_types.ParseTime(endStr); err != nil {
		return nil, err
	}
	// Перерыв либо задан обеими границами, либо отсутствует
	if breakStartStr != nil && breakEndStr != nil {
		breakStart, err := json_types.ParseTime(*breakStartStr)
		if err != nil {
			return nil, err
		}
		breakEnd, err := json_types.ParseTime(*breakEndStr)
		if err != nil {
			return nil, err
		}
		t.BreakStart = &breakStart
		t.BreakEnd = &breakEnd
	}
	return t, nil
}

func (a *PostgresAdapter) GetDailyOverride(ctx context.Context, doctorID int64, date json_types.Date) (*domain.WorkTemplate, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	row := a.pool.QueryRow(ctx, `SELECT `+dailyCols+`
		FROM daily_schedules WHERE doctor_id = $1 AND schedule_date = $2::date`,
		doctorID, date.String())

	template, err := scanDailyTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, a.storeErr("daily_schedules.get", err)
	}
	return template, nil
}

func (a *PostgresAdapter) GetDailyOverrides(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]*domain.WorkTemplate, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.pool.Query(ctx, `SELECT `+dailyCols+`
		FROM daily_schedules
		WHERE doctor_id = $1 AND schedule_date >= $2::date AND schedule_date <= $3::date
		ORDER BY schedule_date`,
		doctorID, from.String(), to.String())
	if err != nil {
		return nil, a.storeErr("daily_schedules.range", err)
	}
	defer rows.Close()

	result := make(map[string]*domain.WorkTemplate)
	for rows.Next() {
		template, err := scanDailyTemplate(rows)
		if err != nil {
			return nil, a.storeErr("daily_schedules.range", err)
		}
		result[template.Date.String()] = template
	}
	if err := rows.Err(); err != nil {
		return nil, a.storeErr("daily_schedules.range", err)
	}
	return result, nil
}

func (a *PostgresAdapter) GetWeeklyTemplate(ctx context.Context, doctorID int64, dayOfWeek int) (*domain.WorkTemplate, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	row := a.pool.QueryRow(ctx, `SELECT `+weeklyCols+`
		FROM doctor_schedules WHERE doctor_id = $1 AND day_of_week = $2`,
		doctorID, dayOfWeek)

	template, err := scanWeeklyTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, a.storeErr("doctor_schedules.get", err)
	}
	return template, nil
}

func (a *PostgresAdapter) GetWeeklyTemplates(ctx context.Context, doctorID int64) (map[int]*domain.WorkTemplate, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.pool.Query(ctx, `SELECT `+weeklyCols+`
		FROM doctor_schedules WHERE doctor_id = $1 ORDER BY day_of_week`,
		doctorID)
	if err != nil {
		return nil, a.storeErr("doctor_schedules.list", err)
	}
	defer rows.Close()

	result := make(map[int]*domain.WorkTemplate)
	for rows.Next() {
		template, err := scanWeeklyTemplate(rows)
		if err != nil {
			return nil, a.storeErr("doctor_schedules.list", err)
		}
		result[template.DayOfWeek] = template
	}
	if err := rows.Err(); err != nil {
		return nil, a.storeErr("doctor_schedules.list", err)
	}
	return result, nil
}

func (a *PostgresAdapter) IsDayOff(ctx context.Context, doctorID int64, date json_types.Date) (bool, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	var isWorking bool
	err := a.pool.QueryRow(ctx, `SELECT is_working
		FROM doctor_calendar WHERE doctor_id = $1 AND calendar_date = $2::date`,
		doctorID, date.String()).Scan(&isWorking)
	if err != nil {
		// Нет записи в календаре - день не помечен нерабочим
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, a.storeErr("doctor_calendar.get", err)
	}
	return !isWorking, nil
}

func (a *PostgresAdapter) GetDayOffs(ctx context.Context, doctorID int64, from, to json_types.Date) (map[string]bool, error) {
	ctx, cancel := a.queryCtx(ctx)
	defer cancel()

	rows, err := a.pool.Query(ctx, `SELECT calendar_date::text
		FROM doctor_calendar
		WHERE doctor_id = $1 AND calendar_date >= $2::date AND calendar_date <= $3::date
			AND is_working = false`,
		doctorID, from.String(), to.String())
	if err != nil {
		return nil, a.storeErr("doctor_calendar.range", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, a.storeErr("doctor_calendar.range", err)
		}
		result[dateStr] = true
	}
	if err := rows.Err(); err != nil {
		return nil, a.storeErr("doctor_calendar.range", err)
	}
	return result, nil
}
