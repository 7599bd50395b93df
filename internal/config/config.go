package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"vehicle_finance/internal/config/connections/mongo"
	"vehicle_finance/internal/config/connections/postgres"
	"vehicle_finance/internal/config/connections/redis"
	"vehicle_finance/internal/config/connections/s3"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port        string
	StoreDriver string
	JWTSecret   string
	TokenTTL    time.Duration
	CacheTTL    time.Duration
	ListLimit   int64
	LogLevel    string
	LogFormat   string

	MongoInfo    mongo.ConnectionInfo
	RedisInfo    redis.ConnectionInfo
	S3Info       s3.ConnectionInfo
	PostgresInfo postgres.ConnectionInfo

	Mongo    *mongo.Mongo
	Redis    *goredis.Client
	S3       *s3.S3
	Postgres *postgres.Postgres
}

// Load reads .env (if present) and the process environment. It opens no
// connections.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	c := &Config{
		Port:        getenv("SERVER_PORT", "8001"),
		StoreDriver: getenv("STORE_DRIVER", StoreMongo),
		JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
		TokenTTL:    getenvDuration("TOKEN_TTL", 24*time.Hour, &errs),
		CacheTTL:    getenvDuration("CACHE_TTL", 10*time.Minute, &errs),
		ListLimit:   int64(getenvInt("LIST_LIMIT", 1000, &errs)),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "console"),

		MongoInfo: mongo.ConnectionInfo{
			URI:        os.Getenv("MONGO_URL"),
			Scheme:     getenv("MONGO_SCHEME", "mongodb"),
			User:       os.Getenv("MONGO_USER"),
			Password:   os.Getenv("MONGO_PASSWORD"),
			Host:       getenv("MONGO_HOST", "127.0.0.1"),
			Port:       getenv("MONGO_PORT", "27017"),
			DB:         getenv("DB_NAME", getenv("MONGO_DB", "vehicle_finance")),
			AuthSource: os.Getenv("MONGO_AUTH_SOURCE"),
		},
		RedisInfo: redis.ConnectionInfo{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0, &errs),
		},
		S3Info: s3.ConnectionInfo{
			Endpoint:  getenv("AWS_ENDPOINT", "localhost:9000"),
			AccessKey: getenv("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretKey: getenv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
			Region:    getenv("AWS_DEFAULT_REGION", "us-east-1"),
			Bucket:    getenv("AWS_BUCKET", "exports"),
			UseSSL:    getenv("AWS_USE_SSL", "false") == "true",
		},
		PostgresInfo: postgres.ConnectionInfo{
			DSN:      os.Getenv("PG_DSN"),
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     getenv("PG_PORT", "5432"),
			User:     getenv("PG_USER", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			DB:       getenv("PG_DB", "finance"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
	}

	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", c.StoreDriver))
	}

	return c, errors.Join(errs...)
}

// Init loads the API configuration and opens its connections: Mongo unless
// the memory store is selected, Redis when REDIS_ADDR is set.
func Init(ctx context.Context) (*Config, error) {
	c, err := Load()
	if err != nil {
		return nil, err
	}
	if c.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	if c.StoreDriver == StoreMongo {
		if err := c.ConnectMongo(ctx); err != nil {
			return nil, err
		}
	}
	if c.RedisInfo.Addr != "" {
		if err := c.ConnectRedis(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Config) ConnectMongo(ctx context.Context) error {
	mg, err := mongo.NewConnection(ctx, c.MongoInfo)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	c.Mongo = mg
	return nil
}

func (c *Config) ConnectRedis(ctx context.Context) error {
	rdb, err := redis.NewConnection(ctx, c.RedisInfo)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	c.Redis = rdb
	return nil
}

func (c *Config) ConnectS3(ctx context.Context) error {
	s3c, err := s3.NewConnection(c.S3Info)
	if err != nil {
		return fmt.Errorf("s3 connect: %w", err)
	}
	if err := s3c.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("s3 bucket: %w", err)
	}
	c.S3 = s3c
	return nil
}

func (c *Config) ConnectPostgres(ctx context.Context) error {
	pg, err := postgres.NewConnection(ctx, c.PostgresInfo)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	c.Postgres = pg
	return nil
}

// CheckConnections pings every opened connection.
func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	if c.Postgres != nil && c.Postgres.DB != nil {
		if err := c.Postgres.DB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres ping failed: %w", err))
		}
	}

	if c.StoreDriver == StoreMongo {
		if c.Mongo == nil || c.Mongo.Client == nil {
			errs = append(errs, errors.New("mongo not initialized"))
		} else if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis ping failed: %w", err))
		}
	}

	if c.S3 != nil && c.S3.Client != nil {
		if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
		} else if !ok {
			errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}
