package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/example/storeadmin/gateway"
	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/discovery"
	"github.com/example/storeadmin/pkg/grpc"
	"github.com/example/storeadmin/pkg/logger"
	"github.com/example/storeadmin/pkg/metrics"
	"github.com/example/storeadmin/pkg/notify"
	"github.com/example/storeadmin/pkg/orders"
	"github.com/example/storeadmin/pkg/repository"
)

func main() {
	configPath := flag.StringP("config", "c", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting order admin",
		zap.String("name", cfg.Server.Name),
		zap.String("store", cfg.Store.Driver),
		zap.String("change_feed", cfg.ChangeFeed.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mt := metrics.New(reg)

	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open order store", zap.Error(err))
	}
	defer backend.close()

	opts := []orders.Option{
		orders.WithLogger(log),
		orders.WithMetrics(mt),
		orders.WithPollInterval(cfg.Orders.PollInterval),
		orders.WithFetchTimeout(cfg.Orders.FetchTimeout),
	}
	if backend.feed != nil {
		opts = append(opts, orders.WithChangeFeed(backend.feed))
	}

	// Audit trail
	if cfg.MongoDB.Enabled {
		mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			log.Warn("Failed to connect to MongoDB, continuing without audit trail", zap.Error(err))
		} else {
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoRepo.Close(closeCtx)
			}()
			opts = append(opts, orders.WithAuditor(mongoRepo))
		}
	}

	// Order confirmations
	var sender notify.Sender = notify.NewLogSender(log.Named("confirmations"))
	if len(cfg.Kafka.Brokers) > 0 {
		sender = notify.NewKafkaSender(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	notifier, err := notify.NewActorNotifier(sender, log)
	if err != nil {
		log.Fatal("Failed to start notifier", zap.Error(err))
	}
	opts = append(opts, orders.WithNotifier(notifier))

	manager := orders.NewManager(backend.store, opts...)

	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		if err := manager.Run(ctx); err != nil {
			log.Error("Order sync failed", zap.Error(err))
		}
	}()

	gw := gateway.NewGateway(&cfg.Gateway, manager, mt, reg, log)
	server := grpc.NewOrderServer(&cfg.Server, manager, log)

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- fmt.Errorf("grpc: %w", err)
		}
	}()

	// Service discovery
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	var sd *discovery.ServiceDiscovery
	if cfg.Etcd.Enabled {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd)
		if err != nil {
			log.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			log.Warn("Failed to register service", zap.Error(err))
		} else {
			log.Info("Service registered in etcd", zap.String("address", instance.Addr()))
		}
	}

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		log.Error("Server error", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			log.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}
	if err := gw.Shutdown(shutdownCtx); err != nil {
		log.Error("Gateway shutdown failed", zap.Error(err))
	}
	server.Stop()
	<-syncDone
	if err := notifier.Stop(); err != nil {
		log.Error("Notifier shutdown failed", zap.Error(err))
	}

	log.Info("Order admin stopped")
}
