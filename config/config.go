package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

// Config holds every setting of the storefront and aggregator services.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	RedisHost    string        `mapstructure:"REDIS_HOST"`
	RedisPort    string        `mapstructure:"REDIS_PORT"`
	RedisDB      int           `mapstructure:"REDIS_DB"`
	StoreTimeout time.Duration `mapstructure:"STORE_TIMEOUT"`

	// Postgres is optional; the order archive is disabled when DB_HOST is empty.
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBName     string `mapstructure:"DB_NAME"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`

	// Kafka is optional; events are not published when KAFKA_BROKER is empty.
	KafkaBroker  string `mapstructure:"KAFKA_BROKER"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	ServiceOpen  string        `mapstructure:"SERVICE_OPEN"`
	ServiceClose string        `mapstructure:"SERVICE_CLOSE"`
	SlotStep     time.Duration `mapstructure:"SLOT_STEP"`
	Timezone     string        `mapstructure:"TIMEZONE"`

	BookingDelay  time.Duration `mapstructure:"BOOKING_DELAY"`
	CheckoutDelay time.Duration `mapstructure:"CHECKOUT_DELAY"`
	AuthDelay     time.Duration `mapstructure:"AUTH_DELAY"`

	PublicBaseURL   string `mapstructure:"PUBLIC_BASE_URL"`
	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	// TrustProxy keys rate limiting on X-Forwarded-For.
	TrustProxy bool `mapstructure:"TRUST_PROXY"`
}

// Load reads config.yaml (if any) and the environment. A missing file is
// not an error; an unreadable one is.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8081")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STORE_TIMEOUT", "2s")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("KAFKA_BROKER", "")
	v.SetDefault("KAFKA_TOPIC", "storefront-events")
	v.SetDefault("KAFKA_GROUP_ID", "agg-svc-consumer")
	v.SetDefault("SERVICE_OPEN", "10:00")
	v.SetDefault("SERVICE_CLOSE", "21:00")
	v.SetDefault("SLOT_STEP", "30m")
	v.SetDefault("TIMEZONE", "Asia/Ho_Chi_Minh")
	v.SetDefault("BOOKING_DELAY", "2s")
	v.SetDefault("CHECKOUT_DELAY", "2s")
	v.SetDefault("AUTH_DELAY", "1500ms")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost")
	v.SetDefault("RATE_LIMIT_PER_MIN", 200)
	v.SetDefault("TRUST_PROXY", false)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves TIMEZONE, falling back to the local zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func InitPostgres(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func InitRedis(cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
		DB:   cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr(), err)
	}

	return client, nil
}

func NewKafkaReader(cfg *Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   cfg.KafkaTopic,
		GroupID: cfg.KafkaGroupID,
	})
}

func NewKafkaWriter(cfg *Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

// ListenAddr turns a bare APP_PORT into ":port".
func (c *Config) ListenAddr() string {
	if _, err := strconv.Atoi(c.AppPort); err == nil {
		return ":" + c.AppPort
	}
	return c.AppPort
}
