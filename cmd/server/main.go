// Command server runs the onboarding HTTP service. Main wires configuration,
// storage, messaging and the domain services; business logic lives under
// internal/.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	accountstore "onboard/internal/account/store/account"
	credentialstore "onboard/internal/account/store/credential"
	httpapi "onboard/internal/http"
	"onboard/internal/jwttoken"
	"onboard/internal/onboarding/handler"
	"onboard/internal/onboarding/metrics"
	"onboard/internal/onboarding/service"
	identitystore "onboard/internal/onboarding/store/identity"
	qualificationstore "onboard/internal/onboarding/store/qualification"
	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/kafka"
	"onboard/internal/platform/logger"
	redisclient "onboard/internal/platform/redis"
	"onboard/internal/verification"
	"onboard/pkg/platform/audit"
	auditkafka "onboard/pkg/platform/audit/store/kafka"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/platform/audit/publisher"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var (
		identities  service.IdentityStore
		answers     service.QualificationRecorder
		credentials service.CredentialStore
		accounts    service.AccountStore
		serviceOpts []service.Option
	)

	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}

		// The qualification store speaks pgx for its batched upserts; it
		// shares the database but not the database/sql pool.
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		identities = identitystore.NewPostgres(db)
		answers = qualificationstore.NewPostgres(pool)
		credentials = credentialstore.NewPostgres(db)
		accounts = accountstore.NewPostgres(db)
		serviceOpts = append(serviceOpts, service.WithTx(newPostgresTx(db)))
		log.Info("using postgres stores")
	} else {
		identities = identitystore.NewInMemory()
		answers = qualificationstore.NewInMemory()
		credentials = credentialstore.NewInMemory()
		accounts = accountstore.NewInMemory()
		log.Warn("no postgres configured, using in-memory stores")
	}

	codes := verificationCodeStore(cfg, log)

	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka)
		if err != nil {
			return err
		}
		defer producer.Close()
		auditStore = auditkafka.NewStore(producer)
		log.Info("audit events stream to kafka", "topic", cfg.Kafka.Topic)
	}
	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer auditPublisher.Close()

	verifier := verification.New(
		codes,
		verification.NewLogSender(log),
		cfg.CodeTTL,
		cfg.ResendWindow,
		verification.WithLogger(log),
	)
	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.TokenIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	serviceOpts = append(serviceOpts,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(auditPublisher),
	)
	svc := service.New(identities, verifier, answers, credentials, accounts, tokens, serviceOpts...)

	router := httpapi.NewRouter(handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("onboarding server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// verificationCodeStore picks redis when configured so codes survive restarts
// and are shared across replicas; otherwise codes live in process memory.
func verificationCodeStore(cfg config.Server, log *slog.Logger) verification.CodeStore {
	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, verification codes held in memory", "error", err)
		return verification.NewInMemoryStore()
	}
	if client == nil {
		return verification.NewInMemoryStore()
	}
	log.Info("verification codes stored in redis")
	return verification.NewRedisStore(client.Client)
}
