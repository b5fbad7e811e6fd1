package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/in"
)

// Pinger - проверка живости хранилища для /health
type Pinger interface {
	Ping(ctx context.Context) error
}

type BookingController struct {
	useCase in.BookingUseCase
	pinger  Pinger
	cfg     *config.Config
}

func NewBookingController(useCase in.BookingUseCase, pinger Pinger, cfg *config.Config) *BookingController {
	return &BookingController{
		useCase: useCase,
		pinger:  pinger,
		cfg:     cfg,
	}
}

func (c *BookingController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.health)

	api := router.Group("/api/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/doctors/:doctorId/slots", c.getSlots)
		api.GET("/doctors/:doctorId/slots/range", c.getSlotsRange)
		api.GET("/doctors/:doctorId/slots/check", c.checkSlot)
		api.POST("/appointments", c.book)
		api.PUT("/appointments/:id/reschedule", c.reschedule)
		api.PUT("/appointments/:id/cancel", c.cancel)
	}
}

type BookRequest struct {
	RequestID    string `json:"request_id"`
	DoctorID     int64  `json:"doctor_id" binding:"required"`
	Date         string `json:"appointment_date" binding:"required"`
	Time         string `json:"appointment_time" binding:"required"`
	PatientName  string `json:"patient_name" binding:"required"`
	PatientPhone string `json:"patient_phone" binding:"required"`
	PatientSnils string `json:"patient_snils"`
	PatientOms   string `json:"patient_oms"`
	Description  string `json:"description"`
}

type RescheduleRequest struct {
	NewDate string `json:"new_date" binding:"required"`
	NewTime string `json:"new_time" binding:"required"`
}

func (c *BookingController) getSlots(ctx *gin.Context) {
	doctorID, err := strconv.ParseInt(ctx.Param("doctorId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID format"})
		return
	}

	date := ctx.Query("date")
	slots, err := c.useCase.GetSlots(ctx.Request.Context(), doctorID, date)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctor_id":       doctorID,
		"date":            date,
		"available_slots": slots,
	})
}

func (c *BookingController) getSlotsRange(ctx *gin.Context) {
	doctorID, err := strconv.ParseInt(ctx.Param("doctorId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID format"})
		return
	}

	days, err := c.useCase.GetSlotsRange(ctx.Request.Context(), doctorID,
		ctx.Query("start_date"), ctx.Query("end_date"))
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctor_id": doctorID,
		"days":      days,
	})
}

func (c *BookingController) checkSlot(ctx *gin.Context) {
	doctorID, err := strconv.ParseInt(ctx.Param("doctorId"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID format"})
		return
	}

	var excludeID *int64
	if raw := ctx.Query("exclude_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exclude_id format"})
			return
		}
		excludeID = &id
	}

	check, err := c.useCase.CheckSlot(ctx.Request.Context(), doctorID,
		ctx.Query("date"), ctx.Query("time"), excludeID)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, check)
}

func (c *BookingController) book(ctx *gin.Context) {
	var req BookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookingReq := domain.BookingRequest{
		DoctorID:     req.DoctorID,
		Date:         req.Date,
		Time:         req.Time,
		PatientName:  req.PatientName,
		PatientPhone: req.PatientPhone,
		PatientSnils: req.PatientSnils,
		PatientOms:   req.PatientOms,
		Description:  req.Description,
	}
	if req.RequestID != "" {
		requestID, err := uuid.Parse(req.RequestID)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request_id format"})
			return
		}
		bookingReq.RequestID = requestID
	}

	id, err := c.useCase.Book(ctx.Request.Context(), bookingReq)
	if err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"appointment_id": id,
	})
}

func (c *BookingController) reschedule(ctx *gin.Context) {
	appointmentID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}

	var req RescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.useCase.Reschedule(ctx.Request.Context(), appointmentID, req.NewDate, req.NewTime); err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *BookingController) cancel(ctx *gin.Context) {
	appointmentID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}

	if err := c.useCase.Cancel(ctx.Request.Context(), appointmentID); err != nil {
		c.renderError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// renderError переводит доменные ошибки в HTTP-статусы.
// SlotTakenError - ожидаемый ответ, пользователь выбирает другой слот.
func (c *BookingController) renderError(ctx *gin.Context, err error) {
	var invalidInput *domain.InvalidInputError
	var slotTaken *domain.SlotTakenError
	var transient *domain.TransientStoreError

	switch {
	case errors.As(err, &invalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": invalidInput.Message})
	case errors.As(err, &slotTaken):
		ctx.JSON(http.StatusConflict, gin.H{
			"error": "slot is already taken",
			"date":  slotTaken.Date,
			"time":  slotTaken.Time,
			"retry": true,
		})
	case errors.Is(err, domain.ErrAppointmentNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
	case errors.As(err, &transient):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary storage failure, please retry"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (c *BookingController) health(ctx *gin.Context) {
	if c.pinger != nil {
		if err := c.pinger.Ping(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": c.cfg.App.Version})
}

func (c *BookingController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}
