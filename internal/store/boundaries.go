package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/electionwatch/atlas-backend/internal/models"
)

// BoundaryFileStore reads the static boundary bundle: one JSON asset
// holding every administrative polygon for all five levels.
type BoundaryFileStore struct {
	path string
}

func NewBoundaryFileStore(path string) *BoundaryFileStore {
	return &BoundaryFileStore{path: path}
}

type boundaryBundle struct {
	Boundaries []models.BoundaryGeometry `json:"boundaries"`
}

func (s *BoundaryFileStore) LoadAll(_ context.Context) ([]models.BoundaryGeometry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read boundary bundle: %w", err)
	}
	var bundle boundaryBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("decode boundary bundle: %w", err)
	}
	return bundle.Boundaries, nil
}
