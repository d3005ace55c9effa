package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/cart"
	cartcache "github.com/VisheshRajput-dev/vishti-shop-sub000/internal/cart/cache"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/catalog"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/httpapi"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/order"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/order/publisher"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/internal/payment"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/pkg/config"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/pkg/logger"
	"github.com/VisheshRajput-dev/vishti-shop-sub000/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Mongo holds carts.
	mongoCtx, mongoCancel := context.WithTimeout(ctx, 15*time.Second)
	mongoDB, err := cart.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
	mongoCancel()
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	cartRepo := cart.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Error("failed to create cart indexes", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cartCache := cartcache.NewRedisCache(redisClient)

	// Postgres holds orders, the outbox and the catalog.
	creds := &order.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	orderRepo, err := order.NewPostgresRepository(creds)
	if err != nil {
		log.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("database migrations completed")

	catalogReader := catalog.NewRepository(orderRepo.DB())

	cartService := cart.NewService(cartRepo, cartCache, catalogReader, log)
	orderService := order.NewService(orderRepo, cartService, log)
	broker := payment.NewBroker(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayTimeout, log)

	poller := publisher.NewOutboxPoller(orderRepo, log, cfg.KafkaBrokers...)
	go poller.Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Carts:          cartService,
		Orders:         orderService,
		Broker:         broker,
		GatewaySecret:  cfg.GatewayKeySecret,
		Currency:       "INR",
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
