package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/finaura/paper-trading/internal/api"
	"github.com/finaura/paper-trading/internal/config"
	"github.com/finaura/paper-trading/internal/database"
	"github.com/finaura/paper-trading/internal/kafka"
	"github.com/finaura/paper-trading/internal/marketdata"
	"github.com/finaura/paper-trading/internal/quotecache"
	"github.com/finaura/paper-trading/internal/trading"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.ConnectionString(), decimal.NewFromFloat(cfg.Market.InitialBalance))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	cache := quotecache.New()

	// Seed the cache from the last persisted snapshot so restarts
	// serve prices before the first upstream fetch completes.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := quotecache.NewSnapshotStore(rdb)
	if snapshot, err := store.Load(ctx); err != nil {
		log.Printf("could not load persisted quotes: %v", err)
	} else if len(snapshot) > 0 {
		cache.Merge(snapshot)
		log.Printf("warmed quote cache with %d persisted quotes", len(snapshot))
	}

	sources := []marketdata.Source{
		marketdata.NewNepseSource(cfg.Market.NepseURL),
		marketdata.NewMerolaganiSource(cfg.Market.MerolaganiURL),
	}
	refresher := marketdata.NewRefresher(cache, sources, store, cfg.Market.RefreshInterval, cfg.Market.FetchTimeout)
	go refresher.Run(ctx)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, db)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("trade audit consumer stopped: %v", err)
		}
	}()

	executor := trading.NewExecutor(db, cache, producer)
	handler := api.NewHandler(db, executor, cache)

	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: api.SetupRoutes(handler),
	}

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
