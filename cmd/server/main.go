// Command server runs the dramcask catalog API: companies and distilleries
// with a review workflow over every change. With DRAMCASK_POSTGRES_DSN set
// it persists to Postgres and relays audit events from the outbox to Kafka;
// without it everything runs in memory, which is enough for local work.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"dramcask/internal/platform/config"
	"dramcask/internal/platform/database"
	"dramcask/internal/platform/httpserver"
	"dramcask/internal/platform/logger"
	"dramcask/internal/revision/engine"
	revmetrics "dramcask/internal/revision/metrics"
	revstore "dramcask/internal/revision/store"
	revisionstore "dramcask/internal/revision/store/revision"
	"dramcask/internal/spirits/company"
	companyservice "dramcask/internal/spirits/company/service"
	companystore "dramcask/internal/spirits/company/store"
	"dramcask/internal/spirits/distillery"
	distilleryservice "dramcask/internal/spirits/distillery/service"
	distillerystore "dramcask/internal/spirits/distillery/store"
	"dramcask/pkg/platform/audit"
	"dramcask/pkg/platform/middleware/actor"
	"dramcask/pkg/platform/middleware/requestid"
	"dramcask/pkg/platform/middleware/requesttime"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := revmetrics.New()

	var (
		companies companyservice.CompanyStore
		revisions engine.RevisionStore
		emitter   audit.Emitter
		relay     *audit.Relay
		kafka     *kgo.Client
	)

	companyOpts := []companyservice.Option{
		companyservice.WithLogger(log),
		companyservice.WithMetrics(metrics),
	}

	if cfg.PostgresDSN != "" {
		db, err := database.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}

		companies = companystore.NewPostgres(db)
		revisions = revisionstore.NewPostgres(db)

		outbox := audit.NewOutboxEmitter(db)
		emitter = outbox
		companyOpts = append(companyOpts,
			companyservice.WithStoreTx(revstore.NewPostgresTx(db, revstore.WithTimeout(cfg.TxTimeout))),
			companyservice.WithAuditEmitter(outbox),
		)

		if len(cfg.KafkaBrokers) > 0 {
			kafka, err = kgo.NewClient(
				kgo.SeedBrokers(cfg.KafkaBrokers...),
				kgo.DefaultProduceTopic(cfg.AuditTopic),
			)
			if err != nil {
				log.Error("failed to create kafka client", "error", err)
				os.Exit(1)
			}
			defer kafka.Close()
			relay = audit.NewRelay(outbox, kafka, cfg.AuditTopic, log)
		}
	} else {
		log.Warn("no postgres dsn configured, using in-memory stores")
		companies = companystore.NewInMemory()
		revisions = revisionstore.NewInMemory()
		emitter = audit.NewMemoryEmitter()
		companyOpts = append(companyOpts, companyservice.WithAuditEmitter(emitter))
	}

	companySvc := company.NewService(companies, revisions, companyOpts...)

	// Distilleries run fully in memory (entities and revisions alike)
	// until their Postgres table lands together with bottler and brand
	// tables. Pairing a durable revision store with a volatile entity
	// store would split one operation across two durability domains and
	// orphan revisions on restart.
	distillerySvc := distillery.NewService(distillerystore.NewInMemory(), companies, revisionstore.NewInMemory(),
		distilleryservice.WithLogger(log),
		distilleryservice.WithMetrics(metrics),
		distilleryservice.WithAuditEmitter(emitter),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)
	router.Use(actor.Middleware(log))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	company.NewHandler(companySvc, log).Register(router)
	distillery.NewHandler(distillerySvc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting dramcask server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if relay != nil {
		group.Go(func() error {
			log.Info("starting audit relay", "topic", cfg.AuditTopic)
			if err := relay.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
