// Package detector implements object detection backends for sector images.
package detector

import (
	"context"
	"fmt"

	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	ProviderHTTP        = "http"
	ProviderRekognition = "rekognition"
)

// New builds the detector selected by cfg.Provider.
func New(ctx context.Context, cfg *config.DetectorConfig, logger *zap.Logger) (repository.Detector, error) {
	switch cfg.Provider {
	case ProviderHTTP:
		return NewHTTPDetector(cfg, logger), nil
	case ProviderRekognition:
		return NewRekognitionDetector(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown detector provider %q", cfg.Provider)
	}
}
