package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/config"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler"
	agendaHandler "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler/agenda"
	appointmentHandler "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler/appointment"
	chatbotHandler "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler/chatbot"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/middleware"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository/postgres"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/router"
	agendaService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/agenda"
	appointmentService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/appointment"
	doctorService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/doctor"
	eventService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/event"
	patientService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/patient"
	scheduleService "github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/schedule"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/auth"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	agendaBlockRepo := postgres.NewAgendaBlockRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	appMetrics := metrics.NewMetrics("agendamento", "api")
	eventSvc := eventService.NewService(outboxRepo)
	agendaSvc := agendaService.NewService(agendaBlockRepo, cfg.Clinic.AllowSunday, appLogger)

	hours := scheduleService.WorkingHours{
		DayStartHour:        cfg.Clinic.DayStartHour,
		DayEndHour:          cfg.Clinic.DayEndHour,
		LunchStartHour:      cfg.Clinic.LunchStartHour,
		LunchEndHour:        cfg.Clinic.LunchEndHour,
		SlotDurationMinutes: cfg.Clinic.SlotDurationMinutes,
		UTCOffsetMinutes:    cfg.Clinic.UTCOffsetMinutes,
	}
	scheduleSvc := scheduleService.NewService(
		appointmentRepo,
		agendaSvc,
		eventSvc,
		hours,
		cfg.Scheduling.RejectOnStoreError(),
		appMetrics,
		appLogger,
	)

	patientSvc := patientService.NewService(patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, scheduleSvc, eventSvc)

	// Middleware
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiryHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, cfg.Auth.ChatbotToken)

	// Handlers
	healthH := handler.NewHealthHandler(db)
	chatbotH := chatbotHandler.NewHandler(scheduleSvc, patientSvc, doctorSvc, appLogger)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, scheduleSvc)
	agendaH := agendaHandler.NewHandler(agendaSvc)

	r := router.NewRouter(
		authMiddleware,
		healthH,
		chatbotH,
		appointmentH,
		agendaH,
		router.RouterConfig{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "agendamento",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal(err, "forced shutdown")
	}
}
