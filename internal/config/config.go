package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/hospitalred/appointment-booking-service/internal/core/domain"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

// TimeZone - таймзона приложения, выставляется в NewConfig.
// Используется при разборе дат без явной таймзоны.
var TimeZone *time.Location = time.UTC

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"Europe/Moscow"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Postgres struct {
		URL          string        `env:"DATABASE_URL"`
		MaxConns     int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
		MinConns     int32         `env:"DATABASE_MIN_CONNS" envDefault:"2"`
		QueryTimeout time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"booking_service:booking_service"`
		BasicClients       []ConfigBasicClient
	}

	Booking struct {
		OccupyingStatusesString string `env:"BOOKING_OCCUPYING_STATUSES" envDefault:"scheduled,confirmed,completed"`
		OccupyingStatuses       []domain.AppointmentStatus
		MaxRangeDays            int `env:"BOOKING_MAX_RANGE_DAYS" envDefault:"62"`
	}

	RabbitMQ struct {
		Enabled       bool   `env:"RABBITMQ_ENABLED"`
		AmqpURI       string `env:"RABBITMQ_URL"`
		ScheduleQueue string `env:"RABBITMQ_SCHEDULE_QUEUE" envDefault:"booking.schedule.changed"`
	}

	Cache struct {
		Enabled       bool `env:"CACHE_ENABLED"`
		TemplatesSize int  `env:"CACHE_TEMPLATES_SIZE" envDefault:"1000"`
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Приведение окружения к нижнему регистру для унификации
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}
	TimeZone = loc

	// Разбор пар логин:пароль для basic-авторизации
	cfg.Auth.BasicClients = []ConfigBasicClient{}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Разбор набора удерживающих статусов
	cfg.Booking.OccupyingStatuses = []domain.AppointmentStatus{}
	for _, s := range strings.Split(cfg.Booking.OccupyingStatusesString, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		cfg.Booking.OccupyingStatuses = append(cfg.Booking.OccupyingStatuses, domain.AppointmentStatus(s))
	}
	if len(cfg.Booking.OccupyingStatuses) == 0 {
		cfg.Booking.OccupyingStatuses = domain.DefaultOccupyingStatuses
	}

	// Кэш без RabbitMQ жил бы без инвалидации, поэтому не включаем
	if !cfg.RabbitMQ.Enabled {
		cfg.Cache.Enabled = false
	}

	return cfg, nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}
