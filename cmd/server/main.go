package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facilitator_activity_tracker/internal/app"
	"facilitator_activity_tracker/internal/domain/email"
	"facilitator_activity_tracker/internal/domain/telegram"
	"facilitator_activity_tracker/internal/infra/config"
	idb "facilitator_activity_tracker/internal/infra/database"
	emailsvc "facilitator_activity_tracker/internal/infra/email"
	ihttp "facilitator_activity_tracker/internal/infra/http"
	"facilitator_activity_tracker/internal/infra/logger"
	"facilitator_activity_tracker/internal/infra/notifylog"
	"facilitator_activity_tracker/internal/infra/queue"
	"facilitator_activity_tracker/internal/infra/scheduler"
	itelegram "facilitator_activity_tracker/internal/infra/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Facilitator activity tracker starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. Environment: %s, EmailBackend: %s", cfg.Environment, cfg.EmailBackend)

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Could not connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Redis connection established")

	// Repositories.
	activityRepo := idb.NewPostgresActivityRepository(db)
	allocationRepo := idb.NewPostgresAllocationRepository(db)
	staffRepo := idb.NewPostgresStaffRepository(db)

	// Notification log.
	logStore := notifylog.NewRedisLogStore(redisClient, cfg.NotificationLogTTL, cfg.RecentLogMax)

	// The DLQ handlers write the single terminal "failed" entry per job.
	onFail := app.TerminalFailureLogger(logStore)

	// Two pipeline stages with independent retry policies.
	decisionDLQ := queue.NewRedisDeadLetterHandler(redisClient, "notifications:decision:dead", onFail)
	deliveryDLQ := queue.NewRedisDeadLetterHandler(redisClient, "notifications:delivery:dead", onFail)
	decisionQueue := queue.NewRedisQueue(redisClient, "notifications:decision", queue.NewRetryPolicy(cfg.EmailBackoffBase), decisionDLQ)
	deliveryQueue := queue.NewRedisQueue(redisClient, "notifications:delivery", queue.NewRetryPolicy(cfg.EmailBackoffBase), deliveryDLQ)

	transport := buildEmailTransport(cfg)
	log.Infof("Email transport initialized (%s)", cfg.EmailBackend)

	var tgClient telegram.Client
	if cfg.TelegramToken != "" {
		bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
		if err != nil {
			log.Fatalf("Could not create Telegram bot: %v", err)
		}
		tgClient = itelegram.NewTelebotAdapter(bot)
		log.Info("Telegram alert channel enabled")
	}

	// Application services.
	tracker := app.NewTrackerService(activityRepo, allocationRepo)
	dispatcher := app.NewDispatcher(decisionQueue, deliveryQueue, logStore, cfg.EmailMaxAttempts, cfg.DecisionMaxAttempts)
	jobHandler := app.NewJobHandler(staffRepo, allocationRepo, transport, dispatcher, logStore, tgClient)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if err := decisionQueue.Subscribe(rootCtx, jobHandler.HandleDecision); err != nil {
		log.Fatalf("Could not start decision queue consumer: %v", err)
	}
	if err := deliveryQueue.Subscribe(rootCtx, jobHandler.HandleDelivery); err != nil {
		log.Fatalf("Could not start delivery queue consumer: %v", err)
	}
	log.Info("Queue consumers started")

	sweeper := queue.NewRetentionSweeper(
		redisClient,
		[]string{decisionQueue.DeadKey(), deliveryQueue.DeadKey()},
		cfg.FailedJobRetention,
		cfg.DLQSweepInterval,
	)
	go sweeper.Start(rootCtx)

	deadlineScheduler := scheduler.NewDeadlineScheduler(
		tracker, dispatcher,
		cfg.CronSpecDailyOverdue, cfg.CronSpecWeeklyReminder,
		cfg.DueSoonWindow,
	)
	if err := deadlineScheduler.Start(); err != nil {
		log.Fatalf("Could not start deadline scheduler: %v", err)
	}

	if cfg.Environment == "production" || cfg.Environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	recordHandler := ihttp.NewRecordHandler(tracker, dispatcher, allocationRepo)
	opsHandler := ihttp.NewOpsHandler(decisionQueue, deliveryQueue, logStore, cfg.RecentLogMax).
		WithDeadLetter("decision", decisionDLQ).
		WithDeadLetter("delivery", deliveryDLQ)
	router := ihttp.InitRoutes(recordHandler, opsHandler)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	go func() {
		log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("Received signal %v, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	deadlineScheduler.Stop()
	rootCancel()
	if err := decisionQueue.Close(); err != nil {
		log.Errorf("Decision queue close error: %v", err)
	}
	if err := deliveryQueue.Close(); err != nil {
		log.Errorf("Delivery queue close error: %v", err)
	}

	log.Info("Facilitator activity tracker stopped")
}

func buildEmailTransport(cfg *config.AppConfig) email.Transport {
	switch cfg.EmailBackend {
	case "smtp":
		return emailsvc.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName)
	case "sendgrid":
		return emailsvc.NewSendgridTransport(cfg.SendgridAPIKey, cfg.FromEmail, cfg.FromName)
	default:
		return emailsvc.NewConsoleTransport(cfg.FromEmail, cfg.FromName)
	}
}
