package main

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/controllers"
	"github.com/dat564/e-commerce-sub001/database"
	"github.com/dat564/e-commerce-sub001/kafka"
	"github.com/dat564/e-commerce-sub001/logger"
	"github.com/dat564/e-commerce-sub001/middleware"
	"github.com/dat564/e-commerce-sub001/repository"
	"github.com/dat564/e-commerce-sub001/routes"
	"github.com/dat564/e-commerce-sub001/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()
	log := logger.Log

	client, db, err := database.Connect(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Close(client)

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		cancel()
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	cancel()

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := services.NewAuthService(userRepo, tokenService)
	productService := services.NewProductService(productRepo, categoryRepo)

	var producer kafka.ProducerAPI
	if cfg.KafkaBrokers != "" {
		p := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, log)
		defer p.Close()
		producer = p
	}
	orderService := services.NewOrderService(orderRepo, productRepo, producer, cfg.OrderExpiry, log)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unavailable, product cache disabled", zap.Error(err))
			rdb = nil
		}
	}
	cache := controllers.NewCacheManager(rdb, log)

	auth := middleware.NewAuth(tokenService, userRepo, cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())

	routes.Register(r, auth, routes.Controllers{
		Auth:     controllers.NewAuthController(authService, cfg.IsProduction(), log),
		User:     controllers.NewUserController(userRepo, authService, cfg.IsProduction()),
		Order:    controllers.NewOrderController(orderService, cfg.IsProduction()),
		Product:  controllers.NewProductController(productService, cache, cfg.IsProduction()),
		Category: controllers.NewCategoryController(productService, cache, cfg.IsProduction()),
		Sweep:    controllers.NewSweepController(orderService, log),
	})

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
