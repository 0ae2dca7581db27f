package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/alphasign-core/internal/api"
	"github.com/nerrad567/alphasign-core/internal/bridges/alphasign"
	"github.com/nerrad567/alphasign-core/internal/history"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/config"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/database"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/logging"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/metrics"
	"github.com/nerrad567/alphasign-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/alphasign-core/internal/sign"
	"github.com/nerrad567/alphasign-core/migrations"
)

// influxHealthInterval is how often sign health is written to InfluxDB.
const influxHealthInterval = 60 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and optional MQTT bridge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := opts.resolvedPath()
			return run(cmd.Context(), path)
		},
	}
}

// run is the service, separated from the command for testability. It
// returns nil on clean shutdown once ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting alphasign",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := history.NewSQLiteRepository(db.DB)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(cfg.Metrics.Namespace)
	}

	// Connect to InfluxDB (optional)
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

	signClient := sign.NewClient(signConfig(cfg.Sign),
		sign.WithRecorder(historyRepo),
		sign.WithLogger(log.With("sign_id", cfg.Sign.ID)),
	)
	defer func() {
		log.Info("closing sign connection")
		if closeErr := signClient.Close(); closeErr != nil {
			log.Error("error closing sign connection", "error", closeErr)
		}
	}()
	for _, o := range commandObservers(collector, influxClient) {
		signClient.AddObserver(o)
	}
	log.Info("sign client ready",
		"sign_id", cfg.Sign.ID,
		"target", cfg.Sign.Target,
		"sync_clock", cfg.Sign.SyncClock,
	)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		bridge, bridgeErr := startBridge(ctx, cfg, signClient, mqttClient, collector, log)
		if bridgeErr != nil {
			return fmt.Errorf("starting MQTT bridge: %w", bridgeErr)
		}
		defer func() {
			log.Info("stopping MQTT bridge")
			bridge.Stop()
		}()
		signClient.AddObserver(bridge)
	} else {
		log.Info("MQTT bridge disabled")
	}

	deps := api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Metrics:   cfg.Metrics,
		SignCfg:   cfg.Sign,
		Logger:    log,
		Sign:      signClient,
		History:   historyRepo,
		DB:        db.DB,
		Collector: collector,
		Version:   version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	apiServer, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	signClient.AddObserver(apiServer.Hub())
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if influxClient != nil {
		go writeHealthLoop(ctx, influxClient, signClient)
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("alphasign stopped")
	return nil
}

// commandObservers fans sign command events out to metrics and InfluxDB.
// Either sink may be nil.
func commandObservers(collector *metrics.Collector, influxClient *influxdb.Client) []sign.Observer {
	var out []sign.Observer
	if collector != nil {
		out = append(out, sign.ObserverFunc(func(ev sign.Event) {
			collector.RecordCommand(ev.SignID, ev.Kind, ev.Err == nil, ev.Bytes, ev.Elapsed)
			collector.SetConnected(ev.SignID, ev.Connected)
		}))
	}
	if influxClient != nil {
		out = append(out, sign.ObserverFunc(func(ev sign.Event) {
			influxClient.WriteCommand(influxdb.CommandSample{
				SignID:  ev.SignID,
				Kind:    ev.Kind,
				Source:  ev.Source,
				Success: ev.Err == nil,
				Bytes:   ev.Bytes,
				Elapsed: ev.Elapsed,
				Time:    ev.Time,
			})
		}))
	}
	return out
}

func startBridge(ctx context.Context, cfg *config.Config, signClient *sign.Client, mqttClient *mqtt.Client, collector *metrics.Collector, log *logging.Logger) (*alphasign.Bridge, error) {
	opts := alphasign.Options{
		Sign:           signClient,
		MQTT:           mqttClient,
		Version:        version,
		QoS:            byte(cfg.MQTT.QoS), //nolint:gosec // validated 0..2 by config
		HealthInterval: time.Duration(cfg.MQTT.HealthInterval) * time.Second,
		Logger:         log,
	}
	if collector != nil {
		opts.Metrics = collector
	}

	bridge, err := alphasign.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}
	if err := bridge.Start(ctx); err != nil {
		return nil, err
	}
	log.Info("MQTT bridge started", "sign_id", cfg.Sign.ID)
	return bridge, nil
}

// writeHealthLoop records sign health in InfluxDB until ctx is cancelled.
func writeHealthLoop(ctx context.Context, influxClient *influxdb.Client, signClient *sign.Client) {
	ticker := time.NewTicker(influxHealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := signClient.Stats()
			influxClient.WriteHealth(signClient.ID(), st.Connected, st.Sent, st.Failed)
		}
	}
}

func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
