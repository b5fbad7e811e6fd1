package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
)

// ScheduleListener слушает события изменения расписаний врачей и сбрасывает
// кэш резолвленных шаблонов. События публикует админка расписаний при любом
// изменении doctor_schedules, daily_schedules или doctor_calendar.
type ScheduleListener struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	cachePort out.CachePort
	cfg       *config.Config
	logger    out.LoggerPort
}

// ScheduleChangedMessage - тело события изменения расписания
type ScheduleChangedMessage struct {
	DoctorID int64  `json:"doctor_id"`
	Resource string `json:"resource,omitempty"`
}

func NewScheduleListener(cachePort out.CachePort, cfg *config.Config, logger out.LoggerPort) (*ScheduleListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.AmqpURI)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.AmqpURI,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &ScheduleListener{
		conn:      conn,
		channel:   channel,
		cachePort: cachePort,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

func (l *ScheduleListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.ScheduleQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	l.logger.Info("schedule.queue.started", out.LogFields{
		"queue": queue.Name,
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Error("schedule.queue.process_failed", out.LogFields{
						"error": err.Error(),
					})
					msg.Nack(false, false)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (l *ScheduleListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	var changed ScheduleChangedMessage
	if err := json.Unmarshal(msg.Body, &changed); err != nil {
		return err
	}

	l.logger.Debug("schedule.queue.message", out.LogFields{
		"doctorId": changed.DoctorID,
		"resource": changed.Resource,
	})

	if l.cachePort != nil {
		l.cachePort.InvalidateDoctor(ctx, changed.DoctorID)
	}

	return nil
}

func (l *ScheduleListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}
