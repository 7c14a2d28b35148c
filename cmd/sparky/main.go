// Sparky Core - device cloud gateway
//
// This is the main entry point for the Sparky Core application. It reads
// variables and device status from the Spark device cloud, caches responses
// to stay within the cloud's rate limits, and serves them over a small REST
// API. Optional integrations forward device events to MQTT and record
// numeric readings in InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/sparky-core/internal/api"
	"github.com/nerrad567/sparky-core/internal/cache"
	"github.com/nerrad567/sparky-core/internal/diagnostics"
	"github.com/nerrad567/sparky-core/internal/events"
	"github.com/nerrad567/sparky-core/internal/infrastructure/config"
	"github.com/nerrad567/sparky-core/internal/infrastructure/database"
	"github.com/nerrad567/sparky-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/sparky-core/internal/infrastructure/logging"
	"github.com/nerrad567/sparky-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sparky-core/internal/spark"
	"github.com/nerrad567/sparky-core/internal/sparkapi"
	"github.com/nerrad567/sparky-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Sparky Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	store, closeStore, err := openCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Optional MQTT: diagnostics and device events are published when enabled.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	collector := diagnostics.NewCollector(diagnostics.DefaultCapacity)
	sinks := diagnostics.Multi{collector, diagnostics.NewLogSink(log)}
	if mqttClient != nil {
		sinks = append(sinks, diagnostics.NewMQTTSink(mqttClient, cfg.Site.ID, log))
	}

	client := sparkapi.New(sparkapi.Config{
		AccessToken:                cfg.Spark.AccessToken,
		BaseURL:                    cfg.Spark.BaseURL,
		RequestTimeout:             cfg.GetRequestTimeout(),
		ScopeVariableCacheByDevice: cfg.Spark.ScopeVariableCacheByDevice,
	},
		sparkapi.WithCache(store),
		sparkapi.WithSink(sinks),
		sparkapi.WithLogger(log.With("component", "sparkapi")),
	)
	if !client.Configured() {
		log.Warn("no device cloud access token configured; set spark.access_token or SPARKY_ACCESS_TOKEN")
	}

	registry, err := spark.NewRegistry(sparksFromConfig(cfg.Sparks))
	if err != nil {
		return fmt.Errorf("loading sparks: %w", err)
	}
	service := spark.NewService(client, registry)
	service.SetLogger(log.With("component", "spark"))
	if influxClient != nil {
		service.SetRecorder(influxClient)
	}
	log.Info("sparks loaded", "count", registry.Count())

	// Deferred after the MQTT and InfluxDB closes, so it runs before them.
	if cfg.Spark.Events.Enabled {
		watchCtx, stopWatcher := context.WithCancel(ctx)
		watcherDone := startWatcher(watchCtx, cfg, mqttClient, influxClient, log)
		defer func() {
			stopWatcher()
			<-watcherDone
		}()
	}

	deps := api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log,
		Client:    client,
		Sparks:    service,
		Collector: collector,
		Version:   version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	if influxClient != nil {
		deps.InfluxDB = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Sparky Core stopped")
	return nil
}

// getConfigPath returns the configuration file path from SPARKY_CONFIG or the default.
func getConfigPath() string {
	if path := os.Getenv("SPARKY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openCache builds the response store selected by cache.backend. The
// returned func releases it and is always safe to call.
func openCache(ctx context.Context, cfg *config.Config, log *logging.Logger) (cache.Store, func(), error) {
	if cfg.Cache.Backend != config.CacheBackendSQLite {
		log.Info("response cache ready", "backend", config.CacheBackendMemory)
		return cache.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	closeDB := func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	store := cache.NewSQLiteStore(db.DB)
	removed, err := store.DeleteExpired(ctx)
	if err != nil {
		log.Warn("pruning expired cache entries failed", "error", err)
	}
	log.Info("response cache ready",
		"backend", config.CacheBackendSQLite,
		"path", db.Path(),
		"pruned", removed,
	)

	return store, closeDB, nil
}

// sparksFromConfig converts config bindings to spark definitions.
func sparksFromConfig(bindings []config.SparkBinding) []spark.Spark {
	sparks := make([]spark.Spark, 0, len(bindings))
	for _, b := range bindings {
		sparks = append(sparks, spark.Spark{
			ID:           b.ID,
			Title:        b.Title,
			CoreID:       b.CoreID,
			Variable:     b.Variable,
			CacheSeconds: b.CacheSeconds,
		})
	}
	return sparks
}

// startWatcher forwards the device event stream until ctx is cancelled.
// The returned channel is closed once the watcher has stopped.
func startWatcher(ctx context.Context, cfg *config.Config, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) <-chan struct{} {
	watcher := events.NewWatcher(events.Config{
		BaseURL:     cfg.Spark.BaseURL,
		AccessToken: cfg.Spark.AccessToken,
		Prefix:      cfg.Spark.Events.Prefix,
	})
	watcher.SetLogger(log.With("component", "events"))
	if mqttClient != nil {
		watcher.SetPublisher(mqttClient)
	}
	if influxClient != nil {
		watcher.SetRecorder(influxClient)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Run(ctx); err != nil {
			log.Error("device event watcher stopped", "error", err)
			return
		}
		log.Info("device event watcher stopped", "received", watcher.Received())
	}()
	return done
}
