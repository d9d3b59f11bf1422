// Command water7-init seeds the shared passcode document so a fresh
// deployment can accept report mutations.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"water7/internal/config"
	"water7/internal/docstore"
	"water7/internal/passcode"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	value := flag.String("passcode", "", "passcode value to store (required)")
	flag.Parse()

	if *value == "" {
		logger.Error("Missing -passcode flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := docstore.Open(docstore.FactoryConfig{
		Type:         docstore.BackendType(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to open document store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	// Update the existing document when present so the collection keeps a
	// single source of truth.
	records, err := store.Query(ctx, passcode.Collection, docstore.Query{Limit: 1})
	if err != nil {
		logger.Error("Failed to read passcode collection", "error", err)
		os.Exit(1)
	}

	if len(records) > 0 {
		if err := store.Update(ctx, passcode.Collection, records[0].ID, map[string]any{"passcode": *value}); err != nil {
			logger.Error("Failed to update passcode", "error", err)
			os.Exit(1)
		}
		logger.Info("Passcode updated", "id", records[0].ID)
		return
	}

	id, err := store.Create(ctx, passcode.Collection, map[string]any{"passcode": *value})
	if err != nil {
		logger.Error("Failed to store passcode", "error", err)
		os.Exit(1)
	}
	logger.Info("Passcode stored", "id", id)
}
