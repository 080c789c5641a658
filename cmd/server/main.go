package main

import (
	"github.com/pocketkid/pocketkid/config"
	"github.com/pocketkid/pocketkid/db"
	"github.com/pocketkid/pocketkid/internal/api"
	"github.com/pocketkid/pocketkid/internal/notify"
	"github.com/pocketkid/pocketkid/internal/repository"
	"github.com/pocketkid/pocketkid/internal/service"
	"github.com/pocketkid/pocketkid/utils"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := utils.InitLogger("info")
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DBURL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
	}

	dispatchers := notify.Multi{
		notify.NewWebPush(repo, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger),
	}
	if cfg.TelegramBotToken != "" && cfg.FamilyChatID != 0 {
		announcer, err := notify.NewTelegramAnnouncer(cfg.TelegramBotToken, cfg.FamilyChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram announcer: ", err)
		}
		dispatchers = append(dispatchers, announcer)
	}

	svc := service.NewService(repo, service.EnglishMessages{}, dispatchers, cache, logger)

	router := api.NewRouter(svc, cfg, logger)
	if err := router.Run(":" + cfg.AppPort); err != nil {
		logger.Fatal(err)
	}
}
