package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/yamoridev/ideaboard/internal/config"
	"github.com/yamoridev/ideaboard/internal/infra/database"
	"github.com/yamoridev/ideaboard/internal/infra/repository"
	"github.com/yamoridev/ideaboard/internal/present/rest"
	authmiddleware "github.com/yamoridev/ideaboard/internal/present/rest/middleware"
	"github.com/yamoridev/ideaboard/internal/service"
	"github.com/yamoridev/ideaboard/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(context.Background(), conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to setup trace provider: " + err.Error())
		}
		defer cleanup()
	}

	ideaRepo := repository.NewIdeaRepository(db, newListCache(conf.Server.MemcachedAddr))
	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.Auth)
	ideaUC := usecase.NewIdeaUsecase(ideaRepo, signal)

	handler := rest.NewHandler(ideaUC, auth, signal)
	authMW := authmiddleware.NewAuthMiddleware(auth)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("ideaboard"))
	}
	e.Use(authMW.IdentifyIdentity)

	handler.RegisterRoutes(e)

	slog.Info(
		"starting ideaboard server",
		slog.String("addr", conf.Server.ListenAddr),
		slog.String("module", "main"),
	)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}
