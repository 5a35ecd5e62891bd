package main

import (
	"context"
	"os/signal"
	"syscall"

	"huongque-storefront/agg-svc/internal/service"
	"huongque-storefront/agg-svc/internal/storage"
	"huongque-storefront/config"
	"huongque-storefront/pkg/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.Must(cfg.Env, cfg.LogLevel, "agg-svc")
	defer logger.Sync()

	if cfg.KafkaBroker == "" {
		logger.Fatal("KAFKA_BROKER is required")
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("aggregation service consuming",
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID))
	service.NewConsumer(reader, storage.NewStore(rdb), logger).Start(ctx)
}
