package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mhregistry/internal/auth"
	"mhregistry/internal/payment"
	"mhregistry/internal/platform/config"
	"mhregistry/internal/platform/httpserver"
	"mhregistry/internal/platform/logger"
	"mhregistry/internal/platform/postgres"
	"mhregistry/internal/platform/redis"
	"mhregistry/internal/registry/change"
	"mhregistry/internal/registry/handler"
	"mhregistry/internal/registry/metrics"
	"mhregistry/internal/registry/service"
	"mhregistry/internal/registry/store/draft"
	"mhregistry/internal/registry/store/registration"
	"mhregistry/internal/report"
	"mhregistry/pkg/platform/middleware/requestid"
	"mhregistry/pkg/platform/middleware/requesttime"
)

const reportBufferSize = 256

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the registry packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	registrations := registration.NewPostgres(db)

	var drafts service.DraftStore = draft.NewInMemory()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		drafts = draft.NewRedis(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, drafts are held in memory")
	}

	var payments payment.Client = payment.NewFake()
	if cfg.PaymentURL != "" {
		payments = payment.NewHTTPClient(cfg.PaymentURL, log)
	} else {
		log.Warn("PAYMENT_SVC_URL not set, filings are approved without charge")
	}

	var sink report.Sink = report.NewMemorySink()
	if cfg.Kafka.Brokers != "" {
		sink, err = report.NewKafkaSink(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.ReportTopic)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("KAFKA_BROKERS not set, verification reports are not delivered")
	}
	enqueuer := report.NewEnqueuer(sink, reportBufferSize, log)

	svc := service.New(registrations, drafts, payments,
		change.Config{
			PermitTermDays:  cfg.PermitTermDays,
			CautionTermDays: cfg.CautionTermDays,
			HomeProvince:    cfg.HomeProvince,
		},
		service.WithLogger(log),
		service.WithReportEnqueuer(enqueuer),
		service.WithMetrics(metrics.New()),
	)

	verifier := auth.NewVerifier(cfg.Auth.SigningKey, cfg.Auth.Issuer)
	h := handler.New(svc, log)

	router := chi.NewRouter()
	router.Use(requestid.Middleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(requesttime.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.RequireAccount(verifier, log))
		h.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting mhregistry", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Drain queued verification reports before exiting.
	enqueuer.Close()
}
