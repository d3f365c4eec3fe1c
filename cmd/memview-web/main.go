package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/memview/internal/collection"
	"github.com/scrypster/memview/internal/config"
	"github.com/scrypster/memview/internal/notify"
	"github.com/scrypster/memview/internal/server"
	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/internal/storage/postgres"
	"github.com/scrypster/memview/internal/storage/sqlite"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Mutations emit events; the live source watches them to push fresh
	// snapshots to the view.
	notifying := storage.NewNotifyingStore(store, notify.NewEventWriter(cfg.Storage.DataPath))

	source, err := collection.NewLiveSource(notifying, cfg.Storage.DataPath)
	if err != nil {
		log.Fatalf("Failed to start live source: %v", err)
	}
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := collection.NewView(source)
	defer view.Close()
	if err := view.SetIdentity(ctx, cfg.User.UserID); err != nil {
		log.Fatalf("Failed to set identity: %v", err)
	}

	addr, _ := server.Start(ctx, cfg, view, notifying)
	log.Printf("memview running at http://%s (user %q)", addr, cfg.User.UserID)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore builds the store the configured engine selects. Postgres is
// wrapped in a circuit breaker because it can fail independently of the
// process; embedded SQLite cannot.
func openStore(cfg *config.Config) (storage.MemoryStore, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		pg, err := postgres.NewStore(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return storage.NewBreakerStore(pg), nil
	default:
		return sqlite.NewStore(cfg.Storage.DataPath + "/memview.db")
	}
}
