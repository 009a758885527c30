package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/commerce-assistant/internal/assistant"
	"github.com/vasiliy-maslov/commerce-assistant/internal/cart"
	"github.com/vasiliy-maslov/commerce-assistant/internal/catalog"
	"github.com/vasiliy-maslov/commerce-assistant/internal/config"
	"github.com/vasiliy-maslov/commerce-assistant/internal/db"
	"github.com/vasiliy-maslov/commerce-assistant/internal/escalation"
	"github.com/vasiliy-maslov/commerce-assistant/internal/history"
	"github.com/vasiliy-maslov/commerce-assistant/internal/intent"
	"github.com/vasiliy-maslov/commerce-assistant/internal/order"
	"github.com/vasiliy-maslov/commerce-assistant/internal/session"
	"github.com/vasiliy-maslov/commerce-assistant/internal/transport"
	"github.com/vasiliy-maslov/commerce-assistant/internal/workflow"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "commerce-assistant").Logger()

	log.Info().Msg("Commerce assistant starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	products, err := catalog.ParseBusinessData(cfg.App.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load business data")
	}
	productCatalog := catalog.New(products)

	var latch escalation.Latch
	if cfg.Redis.Addr != "" {
		latch = escalation.NewRedisLatch(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis escalation latch")
	} else {
		latch = escalation.NewMemoryLatch()
		log.Info().Msg("Using in-memory escalation latch")
	}

	carts := cart.NewService(cart.NewRepository(dbConn.Pool))
	orders := order.NewService(order.NewRepository(dbConn.Pool))
	sessions := session.NewStore(dbConn.Pool)
	messages := history.NewStore(dbConn.Pool)

	checkout := workflow.New(carts, orders, productCatalog, messages)
	turns := assistant.New(
		sessions,
		messages,
		intent.NewKeywordClassifier(),
		checkout,
		latch,
		assistant.NewCatalogRetriever(productCatalog),
		assistant.NewTemplateGenerator(productCatalog),
	)

	router := transport.NewRouter(turns, orders, latch)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
