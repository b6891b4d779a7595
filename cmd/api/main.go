package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/exception"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/attendance-engine/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	correctionService "github.com/cmlabs-hris/attendance-engine/internal/service/correction"
	escalationService "github.com/cmlabs-hris/attendance-engine/internal/service/escalation"
	exceptionService "github.com/cmlabs-hris/attendance-engine/internal/service/exception"
	latenessService "github.com/cmlabs-hris/attendance-engine/internal/service/lateness"
	reportService "github.com/cmlabs-hris/attendance-engine/internal/service/report"
	scheduleService "github.com/cmlabs-hris/attendance-engine/internal/service/schedule"
	"github.com/redis/go-redis/v9"
)

type auditStore interface {
	audit.Sink
	audit.Reader
}

type repositories struct {
	attendance attendance.AttendanceRepository
	exception  exception.ExceptionRepository
	correction correction.CorrectionRepository
	assignment schedule.ShiftAssignmentRepository
	audit      auditStore
	transactor database.Transactor
	cleanup    func()
}

func openRepositories(ctx context.Context, cfg *config.Config, clk clock.Clock) (*repositories, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &repositories{
			attendance: memory.NewAttendanceRepository(clk),
			exception:  memory.NewExceptionRepository(clk),
			correction: memory.NewCorrectionRepository(clk),
			assignment: memory.NewShiftAssignmentRepository(),
			audit:      memory.NewAuditLog(),
			transactor: memory.NewTransactor(),
			cleanup:    func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &repositories{
		attendance: postgresql.NewAttendanceRepository(db),
		exception:  postgresql.NewExceptionRepository(db),
		correction: postgresql.NewCorrectionRepository(db),
		assignment: postgresql.NewShiftAssignmentRepository(db),
		audit:      postgresql.NewAuditLogRepository(db),
		transactor: postgresql.NewTransactor(db),
		cleanup:    db.Close,
	}, nil
}

func newLocker(ctx context.Context, cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.Redis.Address == "" {
		slog.Info("REDIS_ADDRESS not set, using in-process locks")
		return lock.NewKeyedMutex(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return lock.NewRedisLocker(rdb, cfg.Redis.LockTTL), func() { _ = rdb.Close() }, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	repos, err := openRepositories(ctx, cfg, clk)
	if err != nil {
		slog.Error("Error opening storage", "error", err)
		os.Exit(1)
	}
	defer repos.cleanup()

	locker, closeLocker, err := newLocker(ctx, cfg)
	if err != nil {
		slog.Error("Error creating lock backend", "error", err)
		os.Exit(1)
	}
	defer closeLocker()

	auditSink := audit.MultiSink{repos.audit, audit.LogSink{Logger: logger}}

	ledger := attendanceService.NewAttendanceService(repos.attendance, repos.assignment, auditSink, locker, clk)
	exceptionSvc := exceptionService.NewExceptionService(repos.exception, repos.attendance, auditSink, clk)
	latenessMonitor := latenessService.NewLatenessMonitor(repos.exception, auditSink, locker, clk)
	correctionSvc := correctionService.NewCorrectionService(repos.correction, ledger, repos.transactor, locker, auditSink, clk)
	expiryScanner := scheduleService.NewShiftExpiryScanner(repos.assignment, auditSink, clk)
	escalationSvc := escalationService.NewEscalationService(repos.correction, repos.exception, auditSink, clk)
	reportSvc := reportService.NewReportService(repos.exception, repos.attendance, clk)

	scheduler := cron.NewScheduler(clk, cfg.Engine.JobTimeout)
	cron.NewEngineJobs(escalationSvc, expiryScanner, ledger, exceptionSvc, clk, cron.EngineJobsConfig{
		PayrollCutoffDay:    cfg.Engine.PayrollCutoffDay,
		ShiftExpiryDays:     cfg.Engine.ShiftExpiryDays,
		EscalationInterval:  cfg.Engine.EscalationInterval,
		ShiftExpiryInterval: cfg.Engine.ShiftExpiryInterval,
		StaleOpenAge:        cfg.Engine.StaleOpenAge,
		StaleOpenInterval:   cfg.Engine.StaleOpenInterval,
		SystemActorID:       cfg.Engine.SystemActorID,
	}).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.NewAttendanceHandler(ledger, clk),
		appHTTP.NewExceptionHandler(exceptionSvc, latenessMonitor, cfg.Engine.LatenessThreshold),
		appHTTP.NewCorrectionHandler(correctionSvc),
		appHTTP.NewScanHandler(expiryScanner, escalationSvc, cfg.Engine.ShiftExpiryDays),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewAuditHandler(repos.audit),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
