package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirkokoaa-byte/kabten/internal/config"
	"github.com/amirkokoaa-byte/kabten/internal/db"
	"github.com/amirkokoaa-byte/kabten/internal/ledger"
	"github.com/amirkokoaa-byte/kabten/internal/server"
	"github.com/amirkokoaa-byte/kabten/internal/source"
	"github.com/amirkokoaa-byte/kabten/internal/stream"
	"github.com/amirkokoaa-byte/kabten/internal/tracker"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	connectMQTT     func(config.Config) (mqtt.Client, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, mqtt.Client, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		connectMQTT: func(cfg config.Config) (mqtt.Client, error) {
			return source.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
		},
		notify: signal.Notify,
		run:    Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	var pg *pgxpool.Pool
	if cfg.PostgresURL != "" {
		var err error
		pg, err = deps.connectPostgres(cfg)
		if err != nil {
			log.Printf("postgres connection failed: %v", err)
		}
	}

	rdb := deps.connectRedis(cfg)

	mq, err := deps.connectMQTT(cfg)
	if err != nil {
		// tracking activation will fail until a broker is reachable;
		// the control surface still serves
		log.Printf("mqtt connection failed: %v", err)
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, mq, signals, nil); err != nil {
		log.Printf("server exited with error: %v", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run wires the tracking engine, starts the HTTP server and the rollover
// ticker, and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, mq mqtt.Client, signals <-chan os.Signal, listen ListenFunc) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var store ledger.Store
	switch {
	case pg != nil:
		store = ledger.NewPostgresStore(pg)
	case rdb != nil:
		store = ledger.NewRedisStore(rdb)
	default:
		store = ledger.NewMemoryStore()
	}

	hub := stream.NewHub(rdb, logger)
	src := source.NewMQTTSource(mq, cfg.MQTTTopic, logger)

	engine := tracker.NewEngine(ctx, tracker.Options{
		Store:                      store,
		Source:                     src,
		Hub:                        hub,
		RatePerKm:                  cfg.RatePerKm,
		RebasePolicy:               tracker.ParseRebasePolicy(cfg.RebasePolicy),
		StopTripOnPermissionDenied: cfg.StopTripOnPermissionDenied,
		Logger:                     logger,
	})

	srv := server.NewServer(cfg, engine, hub)

	cadence := cfg.RolloverCheckSeconds
	if cadence <= 0 {
		cadence = 10
	}
	ticker := time.NewTicker(time.Duration(cadence) * time.Second)
	rolloverDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				engine.CheckRollover(context.Background())
			case <-rolloverDone:
				return
			}
		}
	}()
	defer func() {
		ticker.Stop()
		close(rolloverDone)
	}()

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	engine.Close()
	if mq != nil {
		mq.Disconnect(250)
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
