package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"chatbot-platform/internal/ai"
	appsvc "chatbot-platform/internal/app"
	"chatbot-platform/internal/config"
	"chatbot-platform/internal/platform/database"
	rabbitmqClient "chatbot-platform/internal/platform/rabbitmq"
	redisClient "chatbot-platform/internal/platform/redis"
	"chatbot-platform/internal/storage"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	MQConn   *amqp.Connection
	Activity appsvc.ActivityPublisher
	Blobs    storage.BlobStore
	LLM      *ai.OpenAICompatibleClient

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    log,
		Activity:  appsvc.NoopActivityPublisher{},
		LLM:       NewLLMClient(cfg.LLM),
		StartedAt: time.Now(),
	}

	db, err := database.New(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := database.Migrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Redis, err = redisClient.New(ctx, cfg.Redis)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Blobs, err = storage.New(ctx, cfg.Storage, cfg.Upload.Directory)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("init blob storage failed: %w", err)
	}

	if cfg.RabbitMQ.URL != "" {
		app.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ActivityQueue)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Activity = rabbitmqClient.NewActivityPublisher(app.MQConn, cfg.RabbitMQ.ActivityQueue)
	} else {
		log.Info("rabbitmq url not set, activity events disabled")
	}

	if !app.LLM.Configured() {
		log.Warn("OPENAI_API_KEY not set, chat requests will be refused")
	}
	return app, nil
}

func NewLLMClient(cfg config.LLMConfig) *ai.OpenAICompatibleClient {
	return ai.NewOpenAICompatibleClient(ai.ChatConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
