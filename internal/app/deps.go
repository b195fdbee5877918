package app

import (
	"context"
	"fmt"

	"artisanal-futures/internal/config"
	"artisanal-futures/internal/db"
	"artisanal-futures/internal/repository/postgres"
	"artisanal-futures/internal/service/email"
	logisticsservice "artisanal-futures/internal/service/logistics"
	"artisanal-futures/internal/service/passcode"
	"artisanal-futures/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Infra holds the external connections shared by the API and the CLI.
// Redis and Store are nil when not configured.
type Infra struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
	Store storage.ObjectStore
}

// Connect opens Postgres and, when configured, Redis and object storage.
// Redis is mandatory only for the redis dispatch store.
func Connect(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*Infra, error) {
	pool, err := db.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to PostgreSQL")

	infra := &Infra{Pool: pool}

	if cfg.RedisAddr != "" {
		client, err := db.NewRedisClient(db.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPass,
			PoolSize: 10,
		})
		switch {
		case err == nil:
			infra.Redis = client
			logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		case cfg.DispatchStore == "redis":
			infra.Close()
			return nil, err
		default:
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		}
	}

	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Warn("object storage unavailable, route archive disabled", zap.Error(err))
		} else {
			infra.Store = store
		}
	}

	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
}

// NewDeriver builds the passcode deriver from PASSCODE_SECRET.
func NewDeriver(cfg config.AppConfig) (*passcode.Deriver, error) {
	d, err := passcode.NewDeriver(cfg.PasscodeSecret)
	if err != nil {
		return nil, fmt.Errorf("PASSCODE_SECRET: %w", err)
	}
	return d, nil
}

// NewLogisticsService wires the depot, passcode, email and archive stack.
func NewLogisticsService(cfg config.AppConfig, infra *Infra, deriver *passcode.Deriver, logger *zap.Logger) *logisticsservice.LogisticsService {
	mailer := email.NewSender(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		FromName: cfg.SMTPFromName,
		Secure:   cfg.SMTPSecure,
	})

	return logisticsservice.NewLogisticsService(
		postgres.NewLogisticsRepository(infra.Pool),
		deriver,
		mailer,
		infra.Store,
		cfg.PublicBaseURL,
		logger,
	)
}

// NewLogger returns a development logger in development and a production
// logger otherwise.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
