package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/access"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-payroll-go/internal/service/leave"
	salaryService "github.com/cmlabs-hris/hris-payroll-go/internal/service/salary"
	"go.uber.org/zap"
)

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

	rdb, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		MaxRetries: 5,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	rolePermissionRepo := postgresql.NewRolePermissionRepository(db)
	profileRepo := postgresql.NewSalaryProfileRepository(db)
	recordRepo := postgresql.NewSalaryRecordRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	settingsRepo := postgresql.NewSettingsRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	outboxRepo := postgresql.NewOutboxRepository(db)

	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		log.Fatal("failed to create rbac enforcer", zap.Error(err))
	}
	permissions := rbac.NewService(rolePermissionRepo, enforcer, log)
	if err := permissions.LoadPolicy(ctx); err != nil {
		log.Fatal("failed to load rbac policy", zap.Error(err))
	}

	scheduler := cron.NewScheduler(ctx, log)
	scheduler.AddJob("rbac-reload", cfg.RBAC.ReloadInterval, permissions.LoadPolicy)
	scheduler.Start()
	defer scheduler.Stop()

	guard := access.NewGuard(userRepo, permissions)
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	salarySvc := salaryService.NewSalaryService(tx, guard, salaryService.Repositories{
		Profiles: profileRepo,
		Records:  recordRepo,
		Holidays: holidayRepo,
		Settings: settingsRepo,
		Sessions: attendanceRepo,
		Leaves:   leaveRequestRepo,
		Users:    userRepo,
		Outbox:   outboxRepo,
	}, rdb, salaryService.Options{
		StatsTTL:           cfg.Redis.StatsTTL,
		DefaultWeekendMask: cfg.WeekendMask(),
	}, log)
	attendanceSvc := attendanceService.NewAttendanceService(guard, attendanceRepo, settingsRepo, cfg.Location(), log)
	leaveSvc := leaveService.NewLeaveService(tx, guard, leaveTypeRepo, leaveBalanceRepo, leaveRequestRepo, outboxRepo, log)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		rdb,
		appHTTP.NewSalaryHandler(salarySvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
