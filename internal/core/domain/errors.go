package domain

import (
	"errors"
	"fmt"
)

// ErrAppointmentNotFound - запись с указанным id не существует.
var ErrAppointmentNotFound = errors.New("appointment not found")

// InvalidInputError - некорректные данные запроса (дата, время, идентификаторы).
// Не ретраится, отдается клиенту как 4xx с описанием.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func NewInvalidInputError(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// SlotTakenError - слот уже занят другой записью. Ожидаемый исход гонки
// между показом слотов и бронированием: пользователь выбирает другой слот.
type SlotTakenError struct {
	DoctorID int64
	Date     string
	Time     string
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("slot %s %s for doctor %d is already taken", e.Date, e.Time, e.DoctorID)
}

// TransientStoreError - таймаут или обрыв соединения с хранилищем.
// Вызывающая сторона может повторить запрос с backoff.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}
