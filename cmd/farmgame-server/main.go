package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/analysis"
	"github.com/agrodata-labs/farmgame-simulator/core"
	"github.com/agrodata-labs/farmgame-simulator/gameclock"
	"github.com/agrodata-labs/farmgame-simulator/internal/api"
	"github.com/agrodata-labs/farmgame-simulator/internal/config"
	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/internal/observability"
	"github.com/agrodata-labs/farmgame-simulator/internal/store"
	"github.com/agrodata-labs/farmgame-simulator/synth"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	listenAddr := flag.String("listen-addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load configuration", logging.Err(err))
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewAPICollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	pipeline, err := observability.NewAnalysisCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise analysis metrics", logging.Err(err))
		os.Exit(1)
	}

	snapshots, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open snapshot store", logging.Err(err))
		os.Exit(1)
	}
	defer closeStore()

	engine := core.NewEngine(core.EngineConfig{
		Surface: core.NewRecordingSurface(),
		Zone:    cfg.SpecialZone,
		Analyzer: analysis.NewService(analysis.Config{
			Seed:        seed,
			Days:        cfg.AnalysisDays,
			Logger:      log,
			ImagingTLE1: synth.DefaultImagingTLE1,
			ImagingTLE2: synth.DefaultImagingTLE2,
		}),
		Logger: log,
	})

	restoreSnapshot(ctx, log, engine, snapshots)

	server := api.NewServer(api.Config{
		Engine:    engine,
		Logger:    log,
		Collector: collector,
		Pipeline:  pipeline,
		Seed:      seed,
	})
	defer server.Close()

	stopAutosave := startAutosave(ctx, log, cfg, engine, snapshots, pipeline)
	defer stopAutosave()

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server,
	}
	go func() {
		log.Info(ctx, "starting farm game API server", logging.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down farm game server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	saveSnapshot(shutdownCtx, log, engine, snapshots)
}

func openStore(ctx context.Context, cfg config.Config) (store.SnapshotStore, func(), error) {
	switch cfg.Store {
	case config.StoreFile:
		return store.NewFileStore(cfg.SnapshotPath), func() {}, nil
	case config.StoreRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

func restoreSnapshot(ctx context.Context, log logging.Logger, engine *core.Engine, snapshots store.SnapshotStore) {
	areas, err := snapshots.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNoSnapshot) {
			log.Warn(ctx, "failed to load snapshot, starting fresh", logging.Err(err))
		}
		return
	}
	engine.Registry.Restore(areas)
	log.Info(ctx, "restored game progress", logging.Int("areas", len(areas)))
}

func saveSnapshot(ctx context.Context, log logging.Logger, engine *core.Engine, snapshots store.SnapshotStore) {
	if err := snapshots.Save(ctx, engine.Registry.Snapshot()); err != nil {
		log.Warn(ctx, "failed to save snapshot", logging.Err(err))
	}
}

// startAutosave persists the registry on every game clock tick and returns
// a stop function.
func startAutosave(ctx context.Context, log logging.Logger, cfg config.Config, engine *core.Engine, snapshots store.SnapshotStore, pipeline *observability.AnalysisCollector) func() {
	if cfg.AutosaveInterval == 0 {
		return func() {}
	}

	clock := gameclock.New(time.Now().UTC(), cfg.AutosaveInterval, 0, gameclock.RealTime)
	clock.AddListener(func(time.Time) {
		saveSnapshot(ctx, log, engine, snapshots)
		pipeline.SetSnapshotAge(0)
	})

	stop := make(chan struct{})
	done := clock.Start(stop)
	return func() {
		close(stop)
		<-done
	}
}
