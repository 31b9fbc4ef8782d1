package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/handler"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/collab"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/config"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/postgres/repository"
	coreredis "github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/redis"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/engine"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/logging"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/metrics"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/scheduler"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(cfg.Log.Level)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&domain.Workflow{},
		&domain.WorkflowStep{},
		&domain.Enrollment{},
		&domain.TriggerEvent{},
		&domain.ExecutionLogEntry{},
	); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := coreredis.NewClient(cfg.Redis.Addr)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	workflowRepo := repository.NewWorkflowRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	triggerRepo := repository.NewTriggerEventRepository(db)
	logRepo := repository.NewExecutionLogRepository(db)

	dueQueue := coreredis.NewDueQueue(redisClient)
	eventBus := coreredis.NewEventBus(redisClient)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(registry)

	messenger := collab.NewLogMessenger(logger)
	directory := collab.NewMemoryDirectory(logger)
	actionHook := collab.NewLogActionHook(logger)

	eng := engine.New(engine.Params{
		Workflows:   workflowRepo,
		Enrollments: enrollmentRepo,
		Triggers:    triggerRepo,
		Logs:        logRepo,
		Directory:   directory,
		Bus:         eventBus,
		Guard:       engine.NewDuplicateGuard(triggerRepo),
		Executor:    engine.NewExecutor(messenger, directory, actionHook, logger),
		Collector:   collector,
		Logger:      logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(enrollmentRepo, dueQueue, eng, logger,
		cfg.Scheduler.PollInterval, cfg.Scheduler.BatchSize)
	go sched.Start(ctx)
	sched.StartWorkers(ctx, cfg.Scheduler.Workers)

	subscriber := metrics.NewSubscriber(eventBus, collector, logger)
	go func() {
		if err := subscriber.Start(ctx); err != nil {
			logger.Error("metrics subscriber failed", "error", err)
		}
	}()

	triggerSvc := service.NewTriggerService(triggerRepo, enrollmentRepo, workflowRepo)
	workflowSvc := service.NewWorkflowService(workflowRepo)
	auditSvc := service.NewAuditService(logRepo)

	router := gin.Default()
	handler.New(eng, triggerSvc, workflowSvc, auditSvc).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("server starting", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
