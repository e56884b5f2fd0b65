package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

// DetectionConfig holds the settings shared by calibration and
// reconciliation passes.
type DetectionConfig struct {
	MinConfidence float64
	PassTimeout   time.Duration
	BasePath      string
	Annotate      bool
}

// imageDetector runs the detector over a sector image and optionally writes
// the annotated copy.
type imageDetector struct {
	detector  repository.Detector
	annotator repository.ImageAnnotator
	cfg       DetectionConfig
	logger    *zap.Logger
}

func newImageDetector(
	detector repository.Detector,
	annotator repository.ImageAnnotator,
	cfg DetectionConfig,
	logger *zap.Logger,
) *imageDetector {
	return &imageDetector{
		detector:  detector,
		annotator: annotator,
		cfg:       cfg,
		logger:    logger,
	}
}

// resolve joins relative image paths onto the configured base path.
func (d *imageDetector) resolve(imagePath string) string {
	if filepath.IsAbs(imagePath) || d.cfg.BasePath == "" {
		return imagePath
	}
	return filepath.Join(d.cfg.BasePath, imagePath)
}

// detect returns an error wrapping domain.ErrDetectionFailed on any failure.
func (d *imageDetector) detect(ctx context.Context, imagePath string, classes []string) ([]domain.Detection, error) {
	if d.cfg.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.PassTimeout)
		defer cancel()
	}

	start := time.Now()
	detections, err := d.detector.Detect(ctx, d.resolve(imagePath), classes, d.cfg.MinConfidence)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDetectionFailed, err)
	}

	d.logger.Debug("Detection finished",
		zap.String("image_path", imagePath),
		zap.Int("detections", len(detections)),
		zap.Duration("took", time.Since(start)),
	)
	return detections, nil
}

// annotate is best effort: failures are logged and an empty path returned.
func (d *imageDetector) annotate(ctx context.Context, imagePath string, detections []domain.Detection) string {
	if !d.cfg.Annotate || d.annotator == nil {
		return ""
	}

	processed, err := d.annotator.Annotate(ctx, d.resolve(imagePath), detections)
	if err != nil {
		d.logger.Warn("Failed to annotate image",
			zap.String("image_path", imagePath),
			zap.Error(err),
		)
		return ""
	}
	return processed
}
