package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/electionwatch/atlas-backend/internal/bootstrap"
	"github.com/electionwatch/atlas-backend/internal/config"
	"github.com/electionwatch/atlas-backend/internal/handlers"
	"github.com/electionwatch/atlas-backend/internal/response"
	"github.com/electionwatch/atlas-backend/internal/router"
	"github.com/electionwatch/atlas-backend/internal/services"
	"github.com/electionwatch/atlas-backend/internal/store"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	sstore := store.NewStatStore(bs.DB)
	bstore := store.NewBoundaryFileStore(cfg.BoundaryPath)
	cache := store.NewChoroplethCache(bs.Redis, time.Duration(cfg.CacheTTLSeconds)*time.Second)

	// boundary cache: loaded once, read-only afterwards
	boundaries := services.NewBoundaryCache(bstore)
	boundaries.LoadBoundaries(logger.ToContext(context.Background(), bs.Log))

	// services
	joiner := services.NewJoinService(boundaries)
	atserv := services.NewAtlasService(sstore, boundaries, joiner, cache)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.AtlasSvc = atserv

	// router
	r := router.NewRouter(deps)
	bs.Log.Info("starting server", "addr", cfg.ListenAddr)
	err = http.ListenAndServe(cfg.ListenAddr, r)
	exitOnError("server start failed", err, bs.Log)
}
