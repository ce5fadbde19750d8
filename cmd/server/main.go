package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"checkin/internal/attendance"
	attendancestore "checkin/internal/attendance/store"
	"checkin/internal/audit"
	"checkin/internal/identity"
	identitystore "checkin/internal/identity/store"
	"checkin/internal/platform/config"
	"checkin/internal/platform/httpserver"
	"checkin/internal/platform/logger"
	"checkin/internal/platform/metrics"
	"checkin/internal/platform/postgres"
	"checkin/internal/platform/redis"
	"checkin/internal/session"
	"checkin/internal/session/device"
	sessionstore "checkin/internal/session/store"
	"checkin/internal/session/token"
	httptransport "checkin/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Store selection is
// config-driven: Postgres and Redis when configured, in-memory otherwise, so
// a single binary serves both development and production.
func main() {
	log := logger.New()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var employees identitystore.EmployeeStore = identitystore.New()
	if db != nil {
		employees = identitystore.NewPostgres(db)
	}
	var sessions sessionstore.SessionStore = sessionstore.NewMemory()
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient)
	}
	var records attendancestore.RecordStore = attendancestore.NewMemory()
	if db != nil {
		records = attendancestore.NewPostgres(db)
	}

	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	publisher := audit.NewPublisher(256, log)
	worker := audit.NewWorker(publisher.Inbox(), sink, log)

	resolver := identity.NewService(employees, cfg.AllowedDomain, publisher, m, log)
	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	sessionService := session.NewService(sessions, tokens, device.NewService(true), cfg.SessionTTL, publisher, m, log)

	location := cfg.Location()
	ledger := attendance.NewService(records, location, publisher, m, log)
	status := attendance.NewStatusService(records, location)

	router := httptransport.NewRouter(
		httptransport.NewAuthHandler(resolver, sessionService, employees, log),
		httptransport.NewAttendanceHandler(ledger, status, log),
		sessionService,
		registry,
		log,
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting checkin server",
			"addr", cfg.Addr,
			"allowed_domain", cfg.AllowedDomain,
			"timezone", cfg.Timezone,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		worker.Run(groupCtx)
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		publisher.Drain(cfg.ShutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
