package main

import (
	"time"

	"huongque-storefront/config"
	"huongque-storefront/pkg/logging"
	"huongque-storefront/pkg/metrics"
	httpapi "huongque-storefront/storefront-svc/internal/api/http"
	"huongque-storefront/storefront-svc/internal/service"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.Must(cfg.Env, cfg.LogLevel, "storefront-svc")
	defer logger.Sync()

	slots, err := service.NewSlotCatalog(cfg.ServiceOpen, cfg.ServiceClose, cfg.SlotStep)
	if err != nil {
		logger.Fatal("invalid service hours", zap.Error(err))
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()
	store := storage.NewKV(storage.NewRedisBackend(rdb), cfg.StoreTimeout, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	loc := cfg.Location()
	opts := httpapi.Options{
		Store:    store,
		Registry: store.Namespace("registry:"),
		Slots:    slots,
		Clock:    func() time.Time { return time.Now().In(loc) },
		Delays: httpapi.Delays{
			Booking:  service.Delay(cfg.BookingDelay),
			Checkout: service.Delay(cfg.CheckoutDelay),
			Auth:     service.Delay(cfg.AuthDelay),
		},
		BaseURL:    cfg.PublicBaseURL,
		QR:         service.DefaultQRGenerator{},
		Popularity: storage.NewPopularityReader(rdb),
		Metrics:    metrics.NewDomainMetrics(reg),
		Logger:     logger,
	}

	if cfg.DBHost != "" {
		db, err := config.InitPostgres(cfg)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		archive := storage.NewPostgresArchive(db)
		if err := archive.EnsureSchema(); err != nil {
			logger.Fatal("failed to ensure order archive schema", zap.Error(err))
		}
		opts.Archive = archive
	} else {
		logger.Info("DB_HOST not set, order archive disabled")
	}

	if cfg.KafkaBroker != "" {
		writer := config.NewKafkaWriter(cfg)
		defer writer.Close()
		opts.Publisher = storage.NewKafkaPublisher(writer)
	} else {
		logger.Info("KAFKA_BROKER not set, event publishing disabled")
	}

	router := httpapi.NewRouter(httpapi.NewHandler(opts), httpapi.RouterOptions{
		Metrics:  metrics.NewServerMetrics(reg, "storefront-svc"),
		Gatherer: reg,
		Limiter:  httpapi.NewRateLimiter(cfg.RateLimitPerMin, logger).TrustProxy(cfg.TrustProxy),
		Logger:   logger,
	})

	if err := httpapi.StartServer(cfg.ListenAddr(), router, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
