// main wires the enrollment service: stores (postgres or in-memory), the
// notifier (kafka or log), the audit pipeline, and the HTTP server lifecycle.
// Business logic lives in the internal service packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"academy/internal/enrollment/cache"
	"academy/internal/enrollment/handler"
	"academy/internal/enrollment/metrics"
	"academy/internal/enrollment/service"
	memorystore "academy/internal/enrollment/store/memory"
	postgresstore "academy/internal/enrollment/store/postgres"
	httpapi "academy/internal/http"
	"academy/internal/jwttoken"
	"academy/internal/notifier"
	kafkanotifier "academy/internal/notifier/kafka"
	"academy/internal/platform/config"
	"academy/internal/platform/httpserver"
	"academy/internal/platform/logger"
	platformredis "academy/internal/platform/redis"
	"academy/pkg/platform/audit"
	auditmemory "academy/pkg/platform/audit/store/memory"
	auditpostgres "academy/pkg/platform/audit/store/postgres"
	"academy/pkg/platform/audit/publisher"
	"academy/pkg/platform/audit/relay"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]httpapi.HealthChecker{}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		stores     service.Stores
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, pg, err := postgresstore.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		stores = service.Stores{
			Applications: pg.Applications,
			Profiles:     pg.Profiles,
			Students:     pg.Students,
			Cohorts:      pg.Cohorts,
			Enrollments:  pg.Enrollments,
			Chapters:     pg.Chapters,
		}
		auditStore = auditpostgres.New(db)
		health["postgres"] = func() error { return db.Ping() }

		// The audit relay only runs against the postgres outbox.
		if len(cfg.KafkaBrokers) > 0 {
			relayClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
			if err != nil {
				log.Error("kafka unavailable for audit relay", "error", err)
				os.Exit(1)
			}
			defer relayClient.Close()
			auditRelay := relay.New(db, relayClient, cfg.AuditTopic, log)
			go func() {
				if err := auditRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("audit relay stopped", "error", err)
				}
			}()
		}
	} else {
		db := memorystore.NewDB()
		stores = service.Stores{
			Applications: db.Applications(),
			Profiles:     db.Profiles(),
			Students:     db.Students(),
			Cohorts:      db.Cohorts(),
			Enrollments:  db.Enrollments(),
			Chapters:     db.ChapterProgress(),
		}
		auditStore = auditmemory.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	// Notifier: kafka when brokers are configured, log sink otherwise.
	var sender notifier.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		kn, err := kafkanotifier.New(cfg.KafkaBrokers, cfg.NotificationsTopic)
		if err != nil {
			log.Error("kafka notifier unavailable", "error", err)
			os.Exit(1)
		}
		defer kn.Close()
		sender = kn
	} else {
		sender = notifier.NewLogNotifier(log)
		log.Warn("KAFKA_BROKERS not set, notifications go to the log")
	}

	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer auditPublisher.Close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(metrics.New()),
	}

	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis unavailable", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		health["redis"] = func() error { return redisClient.Health(context.Background()) }
		opts = append(opts, service.WithCohortNameCache(cache.NewCohortNames(redisClient.Client, log)))
	}

	svc := service.New(service.Config{
		VerificationCutoff:    cfg.VerificationCutoff,
		EnforceCohortCapacity: cfg.EnforceCohortCapacity,
	}, stores, sender, opts...)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "academy", "academy-admin")
	router := httpapi.NewRouter(
		handler.New(svc, handler.WithLogger(log)),
		jwttoken.NewMiddlewareAdapter(jwtService),
		log,
		health,
	)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting academy server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
