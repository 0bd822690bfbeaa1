package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/foodcart/gateway"
	"github.com/example/foodcart/pkg/actors"
	"github.com/example/foodcart/pkg/checkout"
	"github.com/example/foodcart/pkg/config"
	"github.com/example/foodcart/pkg/discovery"
	grpcserver "github.com/example/foodcart/pkg/grpc"
	"github.com/example/foodcart/pkg/logger"
	"github.com/example/foodcart/pkg/repository"
)

const (
	defaultConfigPath = "config/config.yaml"
	checkInterval     = 15 * time.Second
	checkTimeout      = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("CART_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting cart service",
		zap.String("name", cfg.Server.Name),
		zap.Int("gateway_port", cfg.Gateway.Port),
		zap.Int("grpc_port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Snapshots
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(ctx); err != nil {
		log.Warn("Redis unreachable, carts will not survive restarts until it recovers", zap.Error(err))
	}

	// Audit log
	var audit actors.AuditStore
	var auditReader gateway.AuditReader
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		log.Warn("Failed to connect to MongoDB, continuing without audit log", zap.Error(err))
	} else {
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Warn("Failed to create audit indexes", zap.Error(err))
		}
		audit = mongoRepo
		auditReader = mongoRepo
	}

	// Orders
	orderRepo, err := repository.NewOrderRepository(&cfg.MySQL)
	if err != nil {
		log.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	if err := orderRepo.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate orders", zap.Error(err))
	}

	system := actor.NewActorSystem()
	registry := actors.NewRegistry(system, redisRepo, audit, cfg.Cart, log)
	checkoutSvc := checkout.NewService(registry, orderRepo, audit, log)

	gw := gateway.NewGateway(cfg, log, registry, checkoutSvc, auditReader, orderRepo)
	gw.SetupRoutes()

	checks := map[string]grpcserver.Checker{
		"redis": redisRepo.Ping,
		"mysql": orderRepo.Ping,
	}
	if mongoRepo != nil {
		checks["mongodb"] = mongoRepo.Ping
	}
	healthSrv := grpcserver.NewHealthServer(cfg, log, checks)
	go healthSrv.RunChecks(ctx, checkInterval, checkTimeout)

	errCh := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			errCh <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := healthSrv.Start(); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	// Service discovery
	instance := &discovery.ServiceInstance{Name: cfg.Server.Name, Host: cfg.Server.Host, Port: cfg.Gateway.Port}
	sd, err := discovery.NewServiceDiscovery(&cfg.Etcd)
	if err != nil {
		log.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
	} else if err := sd.Register(ctx, instance); err != nil {
		log.Warn("Failed to register service", zap.Error(err))
	}

	log.Info("Cart service started")

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	case err := <-errCh:
		log.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			log.Warn("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Warn("Gateway shutdown", zap.Error(err))
	}
	healthSrv.Stop()

	// Drain cart actors before closing the stores they write to.
	registry.Shutdown()
	system.Shutdown()

	if err := redisRepo.Close(); err != nil {
		log.Warn("Failed to close Redis", zap.Error(err))
	}
	if mongoRepo != nil {
		if err := mongoRepo.Close(shutdownCtx); err != nil {
			log.Warn("Failed to close MongoDB", zap.Error(err))
		}
	}
	if err := orderRepo.Close(); err != nil {
		log.Warn("Failed to close MySQL", zap.Error(err))
	}

	log.Info("Cart service stopped")
}
