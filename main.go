package main

import (
	"context"

	"github.com/DedS3t/tycoon-backend/app/controllers"
	"github.com/DedS3t/tycoon-backend/app/engine"
	"github.com/DedS3t/tycoon-backend/pkg/routes"
	"github.com/DedS3t/tycoon-backend/platform/board"
	"github.com/DedS3t/tycoon-backend/platform/cache"
	"github.com/DedS3t/tycoon-backend/platform/config"
	"github.com/DedS3t/tycoon-backend/platform/database"
	"github.com/DedS3t/tycoon-backend/platform/logging"
	"github.com/DedS3t/tycoon-backend/platform/queries"
	socket "github.com/DedS3t/tycoon-backend/platform/sockets"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	var store database.Store
	if cfg.DBAddr != "" {
		db := database.PostgreSQLConnection(cfg)
		defer db.Close()
		pg := database.NewPGStore(db)
		if err := pg.CreateSchema(); err != nil {
			logrus.WithError(err).Fatal("create schema")
		}
		store = pg
	} else {
		logrus.Warn("DB_ADDR not set, using the in-memory store")
		store = database.NewMemoryStore()
	}

	opts := []engine.Option{engine.WithDecisionTimeout(cfg.DecisionTimeout)}
	games := &controllers.GameController{}
	var dropper queries.Dropper
	if cfg.RedisURL != "" {
		pool := cache.CreateRedisPool(cfg.RedisURL)
		defer pool.Close()
		snapshots := cache.NewSnapshotCache(pool)
		opts = append(opts, engine.WithSnapshotSink(snapshots))
		games.Cache = snapshots
		dropper = snapshots
	}

	manager := engine.NewManager(board.LoadBoard(), store, opts...)
	games.Manager = manager

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queries.NewSweeper(manager, dropper).Run(ctx, cfg.SweepInterval)

	transport, err := socket.NewTransport(manager, cfg.JWTSecret)
	if err != nil {
		logrus.WithError(err).Fatal("socket.io server")
	}
	defer transport.Close()
	manager.SetNotifier(transport)

	go func() {
		if err := transport.Serve(cfg.SocketAddr, cfg.CorsOrigin); err != nil {
			logrus.WithError(err).Fatal("socket.io listen")
		}
	}()

	app := fiber.New()
	app.Use(cors.New())
	routes.GameRoutes(app, games)
	routes.PlayerRoutes(app, cfg.JWTSecret, games)

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logrus.WithError(err).Fatal("http listen")
	}
}
