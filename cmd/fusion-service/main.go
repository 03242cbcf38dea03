package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/statfuse/statfuse/internal/adapters/replay"
	"github.com/statfuse/statfuse/internal/engine"
	"github.com/statfuse/statfuse/internal/pkg/config"
	"github.com/statfuse/statfuse/internal/pkg/logging"
	"github.com/statfuse/statfuse/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	var (
		configPath string
		fixtures   string
		query      string
		home       string
		away       string
		date       string
		force      bool
	)

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&fixtures, "fixtures", "", "Path to provider fixtures JSON (replay adapters)")
	flag.StringVar(&query, "query", "xg", "Query to run: xg, prediction, h2h or team")
	flag.StringVar(&home, "home", "", "Home team name (or team name for -query team)")
	flag.StringVar(&away, "away", "", "Away team name")
	flag.StringVar(&date, "date", "", "Match date, YYYY-MM-DD")
	flag.BoolVar(&force, "force", false, "Bypass cached consensus and re-fuse")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.Setup(&cfg.Logging, "fusion-service"); err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	}

	store, err := openStore(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	var adapters []engine.Adapter
	if fixtures != "" {
		adapters, err = replay.LoadFile(fixtures)
		if err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
		slog.Info("Replay adapters loaded", "providers", len(adapters))
	}

	eng := engine.New(&cfg.Engine, store, engine.NewCatalogue(), adapters)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := runQuery(ctx, eng, query, home, away, date, force)
	if err != nil {
		slog.Error("Query failed", "query", query, "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

func runQuery(ctx context.Context, eng *engine.Engine, query, home, away, date string, force bool) (any, error) {
	switch query {
	case "xg", "prediction":
		if home == "" || away == "" || date == "" {
			return nil, fmt.Errorf("-home, -away and -date are required for %s queries", query)
		}
		kickoff, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid -date: %w", err)
		}
		ref := engine.EntityRef{Type: "match", HomeTeam: home, AwayTeam: away, Date: kickoff}
		if query == "xg" {
			return eng.MatchXG(ctx, ref, force)
		}
		return eng.MatchPrediction(ctx, ref, force)

	case "h2h":
		if home == "" || away == "" {
			return nil, fmt.Errorf("-home and -away are required for h2h queries")
		}
		return eng.HeadToHead(ctx, home, away, force)

	case "team":
		if home == "" {
			return nil, fmt.Errorf("-home is required for team queries")
		}
		return eng.Team(ctx, home, force)

	default:
		return nil, fmt.Errorf("unknown query %q", query)
	}
}

func openStore(cfg *config.StorageConfig) (storage.SnapshotStore, error) {
	switch cfg.Backend {
	case "redis":
		return storage.NewRedisStore(&cfg.Redis)
	case "postgres":
		return storage.NewPostgresStore(&cfg.Postgres)
	case "", "memory":
		slog.Info("Using in-memory snapshot store")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
