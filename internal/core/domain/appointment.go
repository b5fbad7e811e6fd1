package domain

import (
	"github.com/google/uuid"
	"github.com/hospitalred/appointment-booking-service/internal/core/json_types"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// DefaultOccupyingStatuses - статусы, при которых запись удерживает свой слот.
// Набор переопределяется через BOOKING_OCCUPYING_STATUSES.
var DefaultOccupyingStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
}

type Appointment struct {
	ID           int64             `json:"id"`
	DoctorID     int64             `json:"doctor_id"`
	Date         json_types.Date   `json:"appointment_date"`
	Time         json_types.Time   `json:"appointment_time"`
	PatientName  string            `json:"patient_name"`
	PatientPhone string            `json:"patient_phone"`
	PatientSnils string            `json:"patient_snils,omitempty"`
	PatientOms   string            `json:"patient_oms,omitempty"`
	Description  string            `json:"description,omitempty"`
	Status       AppointmentStatus `json:"status"`
}

// BookingRequest - запрос на создание записи. RequestID используется
// для корреляции в логах между pre-check и вставкой.
type BookingRequest struct {
	RequestID    uuid.UUID
	DoctorID     int64
	Date         string
	Time         string
	PatientName  string
	PatientPhone string
	PatientSnils string
	PatientOms   string
	Description  string
}

// SlotCheck - результат проверки доступности одного слота.
type SlotCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
