// Package storefront wires configuration and dependencies for the storefront
// web service.
package storefront

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/urbanhaven/storefront/internal/auth"
	"github.com/urbanhaven/storefront/internal/cart"
	"github.com/urbanhaven/storefront/internal/catalog"
	"github.com/urbanhaven/storefront/internal/checkout"
	"github.com/urbanhaven/storefront/internal/platform/config"
	"github.com/urbanhaven/storefront/internal/platform/i18n"
	"github.com/urbanhaven/storefront/internal/platform/otel"
	"github.com/urbanhaven/storefront/internal/services/web"
	"github.com/urbanhaven/storefront/internal/storage"
	bboltstore "github.com/urbanhaven/storefront/internal/storage/bbolt"
	"github.com/urbanhaven/storefront/internal/storage/memory"
	redisstore "github.com/urbanhaven/storefront/internal/storage/redis"
)

// Config holds the storefront command configuration.
type Config struct {
	HTTPAddr    string `env:"STOREFRONT_HTTP_ADDR" envDefault:"localhost:8080"`
	CatalogURL  string `env:"STOREFRONT_CATALOG_URL" envDefault:"https://fakestoreapi.com"`
	StoragePath string `env:"STOREFRONT_STORAGE_PATH" envDefault:"storefront.db"`
	RedisURL    string `env:"STOREFRONT_REDIS_URL"`
	SessionKey  string `env:"STOREFRONT_SESSION_KEY" envDefault:"dev-only-session-key"`
}

// ParseConfig loads the environment configuration and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.CatalogURL, "catalog-url", cfg.CatalogURL, "catalog API base URL")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "bbolt database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "redis URL (overrides bbolt storage)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the storefront web service and blocks until the context is
// canceled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "storefront")
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("close storage: %v", err)
		}
	}()

	catalogClient, err := catalog.NewClient(cfg.CatalogURL)
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(cfg.SessionKey)
	if err != nil {
		return fmt.Errorf("init session issuer: %w", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("load locale catalogs: %w", err)
	}

	cartSvc := cart.NewService(store)
	server, err := web.NewServer(ctx, web.Config{HTTPAddr: cfg.HTTPAddr}, web.Deps{
		Catalog:  catalogClient,
		Cart:     cartSvc,
		Auth:     auth.NewService(store),
		Checkout: checkout.NewService(cartSvc),
		Issuer:   issuer,
		Store:    store,
		Bundle:   bundle,
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve storefront: %w", err)
	}
	return nil
}

// openStore picks redis when a URL is configured, bbolt when a path is, and
// an in-memory store otherwise. The memory store loses state on restart.
func openStore(ctx context.Context, cfg Config) (storage.KV, func() error, error) {
	if cfg.RedisURL != "" {
		store, err := redisstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	if cfg.StoragePath == "" {
		log.Printf("no storage configured, state will not survive restarts")
		return memory.New(), func() error { return nil }, nil
	}

	store, err := bboltstore.Open(cfg.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
