// Command bomexd serves the BOM extraction pipeline over HTTP.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/tsawler/bomex/learning"
	"github.com/tsawler/bomex/server"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	store, err := buildStore(cfg)
	if err != nil {
		logger.Error("learning store unavailable", "error", err)
		os.Exit(1)
	}

	engine := learning.NewEngine(store, logger)
	srv := server.New(cfg, engine, logger)

	logger.Info("bomexd listening", "addr", cfg.Addr, "store", cfg.LearningStore)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func buildStore(cfg *server.Config) (learning.Store, error) {
	path := cfg.LearningPath
	if path == "" {
		path = learning.DefaultPath()
	}

	switch cfg.LearningStore {
	case server.StoreSQLite:
		return learning.NewSQLiteStore(path)
	case server.StoreMemory:
		return learning.NewMemoryStore(), nil
	default:
		return learning.NewFileStore(path), nil
	}
}
