// Package imagestore writes annotated copies of sector images.
package imagestore

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	processedSuffix = "_processed"
	strokeWidth     = 3
	jpegQuality     = 90
)

type annotator struct {
	logger *zap.Logger
}

// NewAnnotator creates an annotator writing "<name>_processed.jpg" next to
// the source image.
func NewAnnotator(logger *zap.Logger) repository.ImageAnnotator {
	return &annotator{logger: logger}
}

// ProcessedPath returns the annotated image path for imagePath.
func ProcessedPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + processedSuffix + ".jpg"
}

func (a *annotator) Annotate(ctx context.Context, imagePath string, detections []domain.Detection) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}

	canvas := imaging.Clone(src)
	for _, d := range detections {
		drawBox(canvas, d.Box, labelColor(d.Label))
	}

	out := ProcessedPath(imagePath)
	if err := imaging.Save(canvas, out, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("save annotated image: %w", err)
	}

	a.logger.Debug("Annotated image written",
		zap.String("path", out),
		zap.Int("detections", len(detections)))
	return out, nil
}

// labelColor picks a stable, saturated color per label.
func labelColor(label string) color.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	hue := float64(h.Sum32()%360)
	return colorful.Hsv(hue, 0.85, 0.95).Clamped()
}

// drawBox outlines box on img, clipped to the image bounds.
func drawBox(img *image.NRGBA, box domain.BoundingBox, c color.Color) {
	if box.IsDegenerate() {
		return
	}

	r := image.Rect(int(box.Left), int(box.Top), int(box.Right), int(box.Bottom)).Intersect(img.Bounds())
	if r.Empty() {
		return
	}

	for i := 0; i < strokeWidth; i++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, r.Min.Y+i, c)
			img.Set(x, r.Max.Y-1-i, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.Set(r.Min.X+i, y, c)
			img.Set(r.Max.X-1-i, y, c)
		}
	}
}
