package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-payroll-go/internal/messaging/kafka"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	notificationService "github.com/cmlabs-hris/hris-payroll-go/internal/service/notification"
	"go.uber.org/zap"
)

// The worker relays the outbox to kafka and consumes the events that
// produce user notifications.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	outboxRepo := postgresql.NewOutboxRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	writer := kafka.NewWriter(cfg.Kafka.Brokers)
	defer func() { _ = writer.Close() }()

	publisher := kafka.NewPublisher(outboxRepo, writer, cfg.Kafka.OutboxBatchSize, map[string]string{
		outbox.EventSalaryGenerated: cfg.Kafka.TopicSalaryGenerated,
		outbox.EventSalaryPaid:      cfg.Kafka.TopicSalaryPaid,
		outbox.EventLeaveApproved:   cfg.Kafka.TopicLeaveApproved,
	}, log)

	scheduler := cron.NewScheduler(ctx, log)
	scheduler.AddJob("outbox-relay", cfg.Kafka.OutboxPollInterval, publisher.PublishPending)
	scheduler.Start()

	notifier := notificationService.NewNotificationService(notificationRepo, notificationService.Config{}, log)

	consumers := []struct {
		topic  string
		handle kafka.Handler
	}{
		{cfg.Kafka.TopicSalaryPaid, kafka.SalaryPaidHandler(notifier)},
		{cfg.Kafka.TopicLeaveApproved, kafka.LeaveApprovedHandler(notifier)},
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		reader := kafka.NewReader(cfg.Kafka.Brokers, c.topic, cfg.Kafka.ConsumerGroup)
		wg.Add(1)
		go func(topic string, handle kafka.Handler) {
			defer wg.Done()
			defer func() { _ = reader.Close() }()
			kafka.Consume(ctx, reader, topic, handle, log)
		}(c.topic, c.handle)
	}

	log.Info("worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.Duration("outbox_poll_interval", cfg.Kafka.OutboxPollInterval),
	)
	<-ctx.Done()
	log.Info("shutting down worker")

	scheduler.Stop()
	wg.Wait()
	notifier.Stop()
}
