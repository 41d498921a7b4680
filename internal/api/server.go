package api

import (
	"context"
	"log"

	"poctracker/internal/app/config"
	"poctracker/internal/app/dsn"
	"poctracker/internal/app/handler"
	"poctracker/internal/app/redis"
	"poctracker/internal/app/repository"
	"poctracker/internal/app/storage"
	"poctracker/internal/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func StartServer() {
	log.Println("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal("ошибка чтения конфигурации: ", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatal("ошибка инициализации репозитория: ", err)
	}

	// Redis и MinIO опциональны: без них сервис работает,
	// просто без кеша статистики и без загрузки файлов
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logrus.Warn("Redis недоступен, кеш статистики отключен: ", err)
			redisClient = nil
		}
	}

	var minioClient *storage.MinIOClient
	if cfg.Minio.Endpoint != "" {
		minioClient, err = storage.NewMinIOClient(
			cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
			cfg.Minio.Bucket, cfg.Minio.UseSSL)
		if err != nil {
			logrus.Warn("MinIO недоступен, загрузка файлов отключена: ", err)
			minioClient = nil
		}
	}

	h := handler.NewHandler(repo, redisClient, minioClient)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))

	app := pkg.NewApp(cfg, r, h)
	app.RunApp()

	log.Println("Server down")
}
