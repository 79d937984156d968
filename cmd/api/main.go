package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/config"
	"github.com/ariefcatur/go-catalog-api/internal/httpx"
	kafkax "github.com/ariefcatur/go-catalog-api/internal/kafka"
	"github.com/ariefcatur/go-catalog-api/internal/logx"
	"github.com/ariefcatur/go-catalog-api/internal/postgres"
	"github.com/ariefcatur/go-catalog-api/internal/redisx"
	"github.com/ariefcatur/go-catalog-api/internal/telemetry"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logx.Fatal().Err(err).Msg("config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.LogEnvironment()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logx.Fatal().Err(err).Msg("telemetry init")
	}

	// DB
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.DBMaxConns)
	if err != nil {
		logx.Fatal().Err(err).Msg("db connect")
	}
	defer pool.Close()

	db, err := postgres.OpenGorm(pool)
	if err != nil {
		logx.Fatal().Err(err).Msg("gorm open")
	}
	if cfg.AutoMigrate {
		if err := catalog.Migrate(db); err != nil {
			logx.Fatal().Err(err).Msg("migrate")
		}
	}

	repo := &catalog.Repo{DB: db}
	ph := &httpx.ProductsHandler{
		Repo:    repo,
		BaseURL: cfg.PublicBaseURL,
		Service: cfg.ServiceName,
	}

	// Redis (opsional)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		ph.Idempotency = redisx.NewIdempotencyStore(rdb)
	}

	// Kafka producer (opsional)
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, catalog.TopicProducts, 1024)
		prod.Start(ctx)
		ph.Producer = prod
	}

	router := httpx.NewRouter()
	ph.Register(router)
	bh := &httpx.BasketsHandler{Repo: repo, BaseURL: cfg.PublicBaseURL}
	bh.Register(router)

	// HTTP server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		logx.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logx.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logx.Warn().Err(err).Msg("http shutdown")
	}
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
	if err := shutdownTelemetry(ctx2); err != nil {
		logx.Warn().Err(err).Msg("telemetry shutdown")
	}
}
