package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/turismo-portal/internal/api"
	"github.com/example/turismo-portal/internal/auth"
	"github.com/example/turismo-portal/internal/catalog"
	"github.com/example/turismo-portal/internal/checkout"
	"github.com/example/turismo-portal/internal/config"
	"github.com/example/turismo-portal/internal/domain/cart"
	"github.com/example/turismo-portal/internal/infrastructure/cache"
	"github.com/example/turismo-portal/internal/infrastructure/kafka"
	"github.com/example/turismo-portal/internal/infrastructure/store"
	"github.com/example/turismo-portal/internal/notification"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}

	log.Println("[API] ========================================")
	log.Println("[API] TurismoPortal - Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)

	// PostgreSQL
	db, err := store.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[API] Connected to PostgreSQL")

	if err := store.Migrate(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("[API] Migrations failed: %v", err)
	}
	log.Println("[API] Migrations applied")

	// Kafka producer for order notifications
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()
	dispatcher := notification.NewKafkaDispatcher(producer)

	// Stores
	productStore := store.NewProductStore(db)
	userStore := store.NewUserStore(db)
	orderStore := store.NewOrderStore(db)
	settingStore := store.NewEmailSettingStore(db)

	// Catalog with optional Redis read cache
	var catalogSvc *catalog.Service
	if cfg.RedisAddr != "" {
		catalogCache := cache.NewCatalogCache(cfg.RedisAddr, cfg.CacheTTL)
		defer catalogCache.Close()
		catalogSvc = catalog.NewService(productStore, catalogCache)
		log.Printf("[API] Catalog cache: redis %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	} else {
		catalogSvc = catalog.NewService(productStore, nil)
		log.Println("[API] Catalog cache: disabled")
	}

	// Session carts persisted on disk
	cartStore, err := cart.NewFileStore(cfg.CartDir)
	if err != nil {
		log.Fatalf("[API] Failed to prepare cart directory: %v", err)
	}
	carts := cart.NewEngine(cartStore)

	checkoutSvc := checkout.NewService(carts, orderStore, dispatcher)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)

	handlers := api.NewHandlers(catalogSvc, carts, checkoutSvc, orderStore, settingStore, userStore)
	authHandlers := api.NewAuthHandlers(userStore, tokens)
	router := api.NewRouter(handlers, authHandlers, tokens)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}
