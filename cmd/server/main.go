package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storefront/internal/auth/gate"
	"storefront/internal/auth/hashing"
	"storefront/internal/auth/token"
	"storefront/internal/commons"
	"storefront/internal/config"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/memory"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/order"
	orderrepo "storefront/internal/order/repository"
	orderservice "storefront/internal/order/service"
	"storefront/internal/product"
	productrepo "storefront/internal/product/repository"
	"storefront/internal/server"
	"storefront/internal/server/middleware"
	"storefront/internal/user"
	userrepo "storefront/internal/user/repository"
	userservice "storefront/internal/user/service"
)

const configPath = "internal/config/config.yaml"

type userStore interface {
	userservice.UserRepository
	orderservice.BuyerLookup
}

type stores struct {
	users    userStore
	orders   orderservice.OrderRepository
	products product.Repository
	close    func()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := cfg.Validate(); err != nil {
		zapLogger.Fatal("invalid config", zap.Error(err))
	}

	if cfg.Auth.SigningKey == "" {
		key, err := devSigningKey()
		if err != nil {
			zapLogger.Fatal("generating signing key", zap.Error(err))
		}
		cfg.Auth.SigningKey = key
		zapLogger.Warn("no signing key configured, using a random key; tokens will not survive a restart")
	}

	st, err := openStores(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("opening storage", zap.Error(err))
	}
	defer st.close()

	tokens, err := token.NewManager([]byte(cfg.Auth.SigningKey), cfg.Auth.TokenTTL)
	if err != nil {
		zapLogger.Fatal("creating token manager", zap.Error(err))
	}
	hasher := hashing.NewHasher(cfg.Auth.BcryptCost)

	router := server.NewRouter(server.Controllers{
		Auth:    user.NewModule(st.users, hasher, tokens, zapLogger),
		Orders:  order.NewModule(st.orders, st.products, st.users, zapLogger),
		Product: product.NewModule(st.products, zapLogger),
	}, gate.New(tokens), middleware.NewRateLimiter(cfg.Auth.LoginRateRPS, cfg.Auth.LoginRateBurst), zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}

// loadConfig prefers the YAML file and falls back to the environment when
// the file does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := commons.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Load()
	}
	return cfg, err
}

func openStores(cfg *config.Config, zapLogger *zap.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		zapLogger.Info("using in-memory storage")
		return &stores{
			users:    memory.NewUserStore(),
			orders:   memory.NewOrderStore(),
			products: memory.NewProductStore(),
			close:    func() {},
		}, nil
	}

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		return nil, err
	}
	zapLogger.Info("database connected")

	if cfg.Database.Migrate {
		if err := mysql.ApplySchema(context.Background(), db); err != nil {
			db.Close()
			return nil, err
		}
		zapLogger.Info("schema applied")
	}

	return &stores{
		users:    userrepo.NewMySQLUserRepository(db),
		orders:   orderrepo.NewMySQLOrderRepository(db, cfg.Database.MaxRetryAttempts),
		products: productrepo.NewMySQLRepository(db),
		close:    func() { db.Close() },
	}, nil
}

func devSigningKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
