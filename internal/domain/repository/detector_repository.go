package repository

import (
	"context"

	"github.com/parking-occupancy/internal/domain"
)

// Detector runs object detection over an image.
type Detector interface {
	// Detect returns the objects of the allowed classes found in imagePath
	// with at least minConfidence percent confidence. The call may block for
	// the duration of model inference and must honour ctx cancellation.
	Detect(ctx context.Context, imagePath string, classes []string, minConfidence float64) ([]domain.Detection, error)
}

// ImageAnnotator writes a copy of an image with detections drawn on it.
type ImageAnnotator interface {
	// Annotate returns the path of the written image.
	Annotate(ctx context.Context, imagePath string, detections []domain.Detection) (string, error)
}
