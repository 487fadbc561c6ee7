package app

import (
	"context"
	"time"

	"blogsite/internal/cache"
	"blogsite/internal/config"
	"blogsite/internal/db"
	"blogsite/internal/handlers"
	"blogsite/internal/logger"
	"blogsite/internal/repository"
	"blogsite/internal/richtext"
	"blogsite/internal/routes"
	"blogsite/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func InitApp(ctx context.Context, cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}

	// Кэш отрендеренных страниц
	pageCache := newPageCache(cfg)

	// Репозитории
	pageRepo := repository.NewPageRepo(conn)
	authorRepo := repository.NewAuthorRepo(conn)
	tagRepo := repository.NewTagRepo(conn)

	// Сервисы
	formats := richtext.DefaultFormats()
	pageSvc := services.NewPageService(pageRepo, authorRepo, pageCache, formats)
	authorSvc := services.NewAuthorService(authorRepo, pageCache)
	tagSvc := services.NewTagService(tagRepo)
	siteSvc := services.NewSiteService(formats)

	// Хендлеры
	pageH := handlers.NewPageHandler(pageSvc)
	authorH := handlers.NewAuthorHandler(authorSvc)
	tagH := handlers.NewTagHandler(tagSvc)
	adminH := handlers.NewAdminHandler(siteSvc)

	if _, _, err := authorSvc.ApplySchedule(ctx); err != nil {
		logger.Log.Warn("Не удалось применить расписание авторов при старте", zap.Error(err))
	}

	// ▶️ Периодическая публикация/снятие по расписанию
	StartSnippetScheduler(ctx, authorSvc, cfg.SchedulerInterval)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, pageH, authorH, tagH, adminH)

	return router, nil
}

// newPageCache: без REDIS_ADDR или при недоступном redis кэш отключён.
func newPageCache(cfg *config.Config) cache.PageCache {
	if cfg.RedisAddr == "" {
		return cache.NopPageCache{}
	}
	c, err := cache.NewRedisPageCache(cfg)
	if err != nil {
		logger.Log.Warn("Redis недоступен, кэш страниц отключён",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		return cache.NopPageCache{}
	}
	logger.Log.Info("Кэш страниц в redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	return c
}

type scheduler interface {
	ApplySchedule(ctx context.Context) (published, expired []int64, err error)
}

func StartSnippetScheduler(ctx context.Context, svc scheduler, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if _, _, err := svc.ApplySchedule(ctx); err != nil {
					logger.Log.Error("Ошибка применения расписания авторов", zap.Error(err))
				}
			}
		}
	}()
}
