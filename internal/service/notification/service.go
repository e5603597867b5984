package notification

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	config Config
	logger *zap.Logger
	now    func() time.Time

	queue    chan *notification.Notification
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, cfg Config, logger ...*zap.Logger) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}

	s := &service{
		repo:   repo,
		config: cfg,
		logger: l,
		now:    time.Now,
		queue:  make(chan *notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("notification service started",
		zap.Int("workers", cfg.WorkerCount),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("flush_interval", cfg.FlushInterval),
	)
	return s
}

// worker drains the queue in batches
func (s *service) worker(id int) {
	defer s.wg.Done()

	log := s.logger.With(zap.Int("worker", id))
	batch := make([]*notification.Notification, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			log.Error("failed to store notification batch", zap.Int("count", len(batch)), zap.Error(err))
		} else {
			log.Debug("stored notification batch", zap.Int("count", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case n := <-s.queue:
			batch = append(batch, n)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case n := <-s.queue:
					batch = append(batch, n)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Notify renders templateID and queues it for userID. A full queue falls
// back to a direct insert.
func (s *service) Notify(ctx context.Context, userID string, templateID string, vars map[string]string) error {
	tpl, err := notification.Lookup(notification.Type(templateID))
	if err != nil {
		return err
	}
	title, message := tpl.Render(vars)

	n := &notification.Notification{
		ID:          uuid.NewString(),
		RecipientID: userID,
		Type:        notification.Type(templateID),
		Title:       title,
		Message:     message,
		Data:        vars,
		CreatedAt:   s.now().UTC(),
	}

	select {
	case s.queue <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.logger.Warn("notification queue full, inserting directly", zap.String("recipient_id", userID))
		return s.repo.Create(ctx, n)
	}
}

// Stop flushes queued notifications and waits for the workers.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	s.logger.Info("notification service stopped")
}
