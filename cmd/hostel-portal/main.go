package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-portal/common/database"
	"hostel-portal/common/logger"
	commonmqtt "hostel-portal/common/mqtt"
	commonredis "hostel-portal/common/redis"
	"hostel-portal/internal/config"
	httpapi "hostel-portal/internal/http"
	"hostel-portal/internal/repository"
	"hostel-portal/internal/service"
	"hostel-portal/internal/store"

	"go.uber.org/zap"
)

// repos is the storage backend picked at startup.
type repos struct {
	apps       repository.ApplicationsRepository
	rooms      repository.RoomsRepository
	allotment  repository.AllotmentRepository
	complaints repository.ComplaintsRepository
	notices    repository.NoticesRepository
	admins     repository.AdminsRepository
}

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "hostel-portal")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	var db *sql.DB
	var r repos
	if cfg.DBEnabled {
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Fatal("Database connection failed", zap.String("dsn", cfg.Database.Redacted()), zap.Error(err))
		}
		log.Info("Connected to PostgreSQL", zap.String("dsn", cfg.Database.Redacted()))
		r = repos{
			apps:       repository.NewPostgresApplicationsRepository(db),
			rooms:      repository.NewPostgresRoomsRepository(db),
			allotment:  repository.NewPostgresAllotmentRepository(db, log),
			complaints: repository.NewPostgresComplaintsRepository(db),
			notices:    repository.NewPostgresNoticesRepository(db),
			admins:     repository.NewPostgresAdminsRepository(db),
		}
	} else {
		log.Warn("DB_ENABLED=false, data is kept in memory and lost on restart")
		hostel := repository.NewMemoryHostelRepo()
		r = repos{
			apps:       hostel,
			rooms:      hostel,
			allotment:  hostel,
			complaints: repository.NewMemoryComplaintsRepo(),
			notices:    repository.NewMemoryNoticesRepo(),
			admins:     repository.NewMemoryAdminsRepo(),
		}
	}

	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := commonredis.Ping(pingCtx, redisClient); err != nil {
		log.Warn("Redis is not reachable yet; OTP and allotment history will fail until it is", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	pingCancel()
	kv := store.NewRedisKV(redisClient, "hostel:")
	events := service.NewRedisAllotmentEvents(redisClient, cfg.EventsStream, log)

	var broadcaster service.NoticeBroadcaster
	var mqttClient *commonmqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = commonmqtt.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT unavailable, notices will not be broadcast", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			broadcaster = service.NewMQTTNoticeBroadcaster(mqttClient, cfg.MQTT.Topic, cfg.MQTT.QoS)
			log.Info("Broadcasting notices over MQTT", zap.String("topic", cfg.MQTT.Topic))
		}
	}

	var mailer service.Mailer
	if cfg.Mail.APIURL != "" {
		mailer = service.NewMailClient(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, log)
	} else {
		log.Warn("MAIL_API_URL is not set; OTP mails are written to the log")
		mailer = service.NewLogMailer(log)
	}

	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	otp := service.NewOTPManager(kv, cfg.Auth.OTPTTL, cfg.Auth.OTPMaxAttempts, log)
	authSvc := service.NewAuthService(r.admins, r.apps, kv, otp, tokens, mailer, cfg.Fees.MessFeePerMonth, log)
	feeSvc := service.NewFeeService(r.apps, cfg.Fees.DueDays, log)

	var scheduler *service.FeeScheduler
	if cfg.Fees.AccrualCron != "" {
		scheduler, err = service.NewFeeScheduler(cfg.Fees.AccrualCron, feeSvc, log)
		if err != nil {
			log.Fatal("Fee scheduler setup failed", zap.Error(err))
		}
		scheduler.Start()
	}

	router := httpapi.NewRouter(log)
	checks := map[string]httpapi.HealthCheck{
		"redis": func(ctx context.Context) error { return commonredis.Ping(ctx, redisClient) },
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if mqttClient != nil {
		checks["mqtt"] = func(context.Context) error {
			if !mqttClient.IsConnected() {
				return errors.New("broker connection lost")
			}
			return nil
		}
	}
	router.RegisterHealth(checks)

	apps := httpapi.NewApplicationHandler(
		service.NewApplicationService(r.apps, r.allotment, events, log),
		service.NewAllotmentService(r.allotment, events, log),
		log,
	)
	complaints := httpapi.NewComplaintHandler(service.NewComplaintService(r.complaints, r.apps, log), log)
	authenticator := httpapi.NewAuthenticator(authSvc, log)

	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, log))
	router.RegisterStudentRoutes(authenticator, apps, complaints)
	router.RegisterHostelRoutes(authenticator, apps,
		httpapi.NewRoomHandler(service.NewRoomService(r.rooms, log), log),
		httpapi.NewFeeHandler(feeSvc, log),
		complaints,
	)
	router.RegisterNoticeRoutes(authenticator, httpapi.NewNoticeHandler(service.NewNoticeService(r.notices, broadcaster, log), log))
	router.RegisterFallback()

	handler := httpapi.Wrap(router, httpapi.Options{
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, log)
	srv := service.NewServer(cfg.HTTP.Addr, handler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
	_ = database.Close(db)
}
