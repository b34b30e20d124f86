// Command seed applies the database schema and imports the administrative
// hierarchy from the static boundary bundle, so a fresh database can serve
// statistics queries immediately.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/electionwatch/atlas-backend/internal/bootstrap"
	"github.com/electionwatch/atlas-backend/internal/config"
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
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	err = store.CreateSchema(bs.DB)
	exitOnError("schema creation failed", err, bs.Log)

	ctx := logger.ToContext(context.Background(), bs.Log)
	bstore := store.NewBoundaryFileStore(cfg.BoundaryPath)
	boundaries, err := bstore.LoadAll(ctx)
	exitOnError("boundary bundle load failed", err, bs.Log)

	n, err := store.ImportUnits(ctx, bs.DB, boundaries)
	exitOnError("unit import failed", err, bs.Log)

	bs.Log.Info("seed complete", "units", n)
}
