package main

import (
	"context"
	"time"

	"github.com/udistrital/gestion_ofertas_mid/controllers/errorhandler"
	"github.com/udistrital/gestion_ofertas_mid/internal/middlewares"
	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	_ "github.com/udistrital/gestion_ofertas_mid/routers"
	"github.com/udistrital/gestion_ofertas_mid/services"

	"github.com/beego/beego/v2/core/logs"
	beego "github.com/beego/beego/v2/server/web"
	cors "github.com/beego/beego/v2/server/web/filter/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logs.Info("sin archivo .env, se usan variables del entorno")
	}
	cfg := services.GetConfig()

	beego.InsertFilter("*", beego.BeforeRouter, cors.Allow(&cors.Options{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Requested-With", "Accept", "X-Profesional-Id", "X-Request-Id", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-Id", "Retry-After"},
		AllowCredentials: true,
	}))
	if beego.BConfig.RunMode == "dev" {
		beego.BConfig.WebConfig.DirectoryIndex = true
		beego.BConfig.WebConfig.StaticDir["/swagger"] = "swagger"
	}
	beego.BConfig.RecoverPanic = true
	beego.BConfig.RecoverFunc = errorhandler.RecoverPanic

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		logs.Critical("no fue posible abrir el store:", err)
		panic(err)
	}
	internalservices.SetGestion(internalservices.NewGestionService(st, cfg.StatsCacheSize, cfg.StatsCacheTTL))

	middlewares.UseAuth()
	middlewares.UseMetrics()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		limiter := middlewares.NewRateLimiter(client, cfg.RateLimit, cfg.RateWindow)
		beego.InsertFilter("/v1/gestion/*", beego.BeforeRouter, limiter.Filter)
		logs.Info("rate limit activo:", cfg.RateLimit, "por", cfg.RateWindow)
	}

	logs.Info("store:", cfg.StoreDriver)
	beego.Run()
}

func openStore(ctx context.Context, cfg services.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case services.StoreCRUD:
		return store.NewCRUD(cfg.CRUDBaseURL, cfg.CRUDBearerToken, cfg.RequestTimeout), nil
	case services.StorePostgres:
		pool, err := store.OpenPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pg, nil
	default:
		return store.NewMemory(), nil
	}
}
