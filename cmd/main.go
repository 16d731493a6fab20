/**
 * @description
 * This file is the entry point for the ledger-service. It loads configuration,
 * picks a snapshot store (Postgres when DATABASE_URL is set, flat files
 * otherwise), optionally connects the RabbitMQ event producer, restores the
 * last snapshot, seeds demo data when asked, and serves the HTTP API until a
 * shutdown signal arrives. On shutdown the full state is snapshotted back to
 * the store.
 *
 * Both RabbitMQ and Postgres are optional: the service degrades to a no-op
 * publisher and the file store rather than refusing to start.
 */

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/ledger-service/internal/api"
	"github.com/corebank/ledger-service/internal/app"
	"github.com/corebank/ledger-service/internal/config"
	"github.com/corebank/ledger-service/internal/ledger"
	"github.com/corebank/ledger-service/internal/store"
	"github.com/corebank/ledger-service/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("level=fatal component=main msg=\"could not load configuration\" err=%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := ledger.NewRegistry()
	l := ledger.NewLedger(registry)

	var producer rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=main msg=\"rabbitmq unavailable, events disabled\" err=%v", err)
			producer = &rabbitmq.NoopPublisher{}
		} else {
			producer = p
			defer p.Close()
		}
	} else {
		producer = &rabbitmq.NoopPublisher{}
	}

	service := app.NewService(cfg, registry, l, producer)

	snapshots, cleanup := newSnapshotStore(ctx, cfg, service.Policies())
	defer cleanup()

	snap, err := snapshots.Load(ctx)
	if err != nil {
		log.Fatalf("level=fatal component=main msg=\"could not load snapshot\" err=%v", err)
	}
	if len(snap.Accounts) > 0 || len(snap.Transactions) > 0 {
		service.RestoreSnapshot(snap.Accounts, snap.Transactions)
	}
	if cfg.SeedSampleData {
		if err := service.SeedSampleData(); err != nil {
			log.Fatalf("level=fatal component=main msg=\"could not seed sample data\" err=%v", err)
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: api.NewRouter(api.NewServer(service)),
	}
	go func() {
		log.Printf("level=info component=main msg=\"server listening\" port=%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("level=fatal component=main msg=\"server failed\" err=%v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("level=info component=main msg=\"shutdown signal received\"")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("level=error component=main msg=\"server shutdown failed\" err=%v", err)
	}

	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSave()
	final := store.Snapshot{Accounts: registry.All(), Transactions: l.AllTransactions()}
	if err := snapshots.Save(saveCtx, final); err != nil {
		log.Printf("level=error component=main msg=\"could not save snapshot\" err=%v", err)
		os.Exit(1)
	}
	log.Printf("level=info component=main msg=\"shutdown complete\"")
}

// newSnapshotStore prefers Postgres and falls back to the file store when the
// database is not configured or unreachable.
func newSnapshotStore(ctx context.Context, cfg config.Config, policies ledger.PolicySet) (store.SnapshotStore, func()) {
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, policies)
		if err == nil {
			return pg, pg.Close
		}
		log.Printf("level=warn component=main msg=\"postgres unavailable, using file store\" err=%v", err)
	}
	return store.NewFileStore(cfg.DataDir, policies), func() {}
}
