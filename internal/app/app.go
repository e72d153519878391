package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/auth"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/cache"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/config"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	handlerhttp "github.com/Ak-theArtist/A-Kart-mobile-backend/internal/handler/http"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	mongorepo "github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository/mongo"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/service"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage/cloudinary"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage/memory"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/database"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/health"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/kafka"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/tracing"
)

// App wires configuration, storage, services and the HTTP server together.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	server *http.Server

	mongoClient *mongo.Client
	redisClient *redis.Client
	producer    *kafka.Producer
	stopTracing func(context.Context) error
}

// New builds the application. Every dependency is connected and verified
// before the server is returned.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	stopTracing, err := tracing.Init(ctx, cfg.ServiceName, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.stopTracing = stopTracing

	db, err := database.NewMongoDatabase(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	app.mongoClient = db.Client()

	userRepo, err := mongorepo.NewUserRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("init user repository: %w", err)
	}
	categoryRepo, err := mongorepo.NewCategoryRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("init category repository: %w", err)
	}
	orderRepo, err := mongorepo.NewOrderRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("init order repository: %w", err)
	}
	baseProductRepo, err := mongorepo.NewProductRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("init product repository: %w", err)
	}

	var productRepo repository.ProductRepository = baseProductRepo
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedisClient(ctx, cfg.Redis.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.redisClient = rdb
		productRepo = cache.NewProductCache(baseProductRepo, rdb, cfg.Redis.CacheTTL, log)
	}

	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.Kafka.Enabled {
		app.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.ServiceName, log)
		publisher = event.NewKafkaPublisher(app.producer, log)
	}

	var images storage.Storage
	if cfg.Uploads.CloudName != "" {
		images = cloudinary.New(cloudinary.Config{
			CloudName: cfg.Uploads.CloudName,
			APIKey:    cfg.Uploads.APIKey,
			APISecret: cfg.Uploads.APISecret,
			Folder:    cfg.Uploads.UploadFolder,
		}, log)
	} else {
		log.Warn("no image host configured, falling back to in-memory storage")
		images = memory.New()
	}

	tokens := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.ServiceName)

	userSvc := service.NewUserService(userRepo, tokens, images, publisher, log)
	productSvc := service.NewProductService(productRepo, categoryRepo, images, publisher, log)
	categorySvc := service.NewCategoryService(categoryRepo, productRepo, publisher, log)
	orderSvc := service.NewOrderService(orderRepo, productRepo, publisher, log)

	healthHandler := health.NewHandler(cfg.Version)
	healthHandler.Register(health.CheckerFunc{CheckName: "mongodb", Fn: func(ctx context.Context) error {
		return app.mongoClient.Ping(ctx, readpref.Primary())
	}})
	if app.redisClient != nil {
		healthHandler.Register(health.CheckerFunc{CheckName: "redis", Fn: func(ctx context.Context) error {
			return app.redisClient.Ping(ctx).Err()
		}})
	}
	if app.producer != nil {
		healthHandler.Register(health.CheckerFunc{CheckName: "kafka", Fn: app.producer.Ping})
	}

	secureCookies := cfg.Environment != "development"

	router := handlerhttp.NewRouter(handlerhttp.RouterDeps{
		Users:      handlerhttp.NewUserHandler(userSvc, tokens, secureCookies, log),
		Products:   handlerhttp.NewProductHandler(productSvc, userSvc, log),
		Categories: handlerhttp.NewCategoryHandler(categorySvc, log),
		Orders:     handlerhttp.NewOrderHandler(orderSvc, log),
		Health:     healthHandler,
		Verifier:   tokens,
		Config:     cfg,
		Logger:     log,
	})

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return app, nil
}

// Run serves HTTP until the context is canceled, then shuts everything down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongodb: %w", err))
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.log.Info("shutdown complete")
	return nil
}
