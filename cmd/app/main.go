package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	httpin "github.com/hospitalred/appointment-booking-service/internal/adapters/in/http"
	"github.com/hospitalred/appointment-booking-service/internal/adapters/in/rabbitmq"
	"github.com/hospitalred/appointment-booking-service/internal/adapters/out/cache"
	"github.com/hospitalred/appointment-booking-service/internal/adapters/out/logger"
	"github.com/hospitalred/appointment-booking-service/internal/adapters/out/postgres"
	"github.com/hospitalred/appointment-booking-service/internal/config"
	"github.com/hospitalred/appointment-booking-service/internal/core/ports/out"
	"github.com/hospitalred/appointment-booking-service/internal/core/services/booking_service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с таймзоной
	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
	})

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация адаптеров
	postgresAdapter, err := postgres.NewPostgresAdapter(ctx, cfg, mainLogger.WithModule("PostgresAdapter"))
	if err != nil {
		log.Error("app.postgres.init_failed", out.LogFields{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer postgresAdapter.Close()

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		lruAdapter, err := cache.NewCacheAdapter(cfg, mainLogger.WithModule("CacheAdapter"))
		if err != nil {
			log.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		cacheAdapter = lruAdapter
	}

	// Инициализация сервиса
	bookingService := booking_service.NewBookingService(
		postgresAdapter,
		postgresAdapter,
		cacheAdapter,
		cfg,
		mainLogger.WithModule("BookingService"),
	)

	// Настройка HTTP сервера
	router := gin.Default()
	controller := httpin.NewBookingController(bookingService, postgresAdapter, cfg)
	controller.RegisterRoutes(router)

	// Слушатель изменений расписания только если RabbitMQ включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewScheduleListener(
			cacheAdapter,
			cfg,
			mainLogger.WithModule("RabbitMQListener"),
		)
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		if err := listener.Start(ctx); err != nil {
			log.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				log.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown.initiated", out.LogFields{
		"signal": sig.String(),
	})
}
