package handlers

import (
	"log/slog"

	"github.com/electionwatch/atlas-backend/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	AtlasSvc        AtlasService
}
