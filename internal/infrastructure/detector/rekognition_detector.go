package detector

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

// rekognitionAPI is the part of *rekognition.Client the detector uses.
type rekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type rekognitionDetector struct {
	client    rekognitionAPI
	maxLabels int32
	logger    *zap.Logger
}

// NewRekognitionDetector creates a detector backed by AWS Rekognition
// DetectLabels. Credentials come from the default AWS chain.
func NewRekognitionDetector(ctx context.Context, cfg *config.DetectorConfig, logger *zap.Logger) (repository.Detector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	logger.Info("Rekognition detector initialized", zap.String("region", cfg.AWSRegion))
	return newRekognitionDetector(rekognition.NewFromConfig(awsCfg), cfg.MaxLabels, logger), nil
}

func newRekognitionDetector(client rekognitionAPI, maxLabels int32, logger *zap.Logger) *rekognitionDetector {
	return &rekognitionDetector{client: client, maxLabels: maxLabels, logger: logger}
}

func (d *rekognitionDetector) Detect(ctx context.Context, imagePath string, classes []string, minConfidence float64) ([]domain.Detection, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	// Rekognition boxes are ratios of the frame, spot geometry is in pixels.
	frame, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(d.maxLabels),
		MinConfidence: aws.Float32(float32(minConfidence)),
	})
	if err != nil {
		d.logger.Error("Rekognition DetectLabels failed", zap.Error(err))
		return nil, fmt.Errorf("rekognition detect labels: %w", err)
	}

	allowed := classSet(classes)
	width, height := float64(frame.Width), float64(frame.Height)

	var detections []domain.Detection
	for _, label := range out.Labels {
		name := normalizeLabel(aws.ToString(label.Name))
		for _, inst := range label.Instances {
			if inst.BoundingBox == nil {
				continue
			}
			confidence := float64(aws.ToFloat32(inst.Confidence))
			if !accept(allowed, name, confidence, minConfidence) {
				continue
			}

			bb := inst.BoundingBox
			left := float64(aws.ToFloat32(bb.Left)) * width
			top := float64(aws.ToFloat32(bb.Top)) * height
			detections = append(detections, domain.Detection{
				Box: domain.NewBoundingBox(
					left,
					top,
					left+float64(aws.ToFloat32(bb.Width))*width,
					top+float64(aws.ToFloat32(bb.Height))*height,
				),
				Confidence: confidence,
				Label:      name,
			})
		}
	}

	d.logger.Debug("Rekognition call successful",
		zap.Int("labels", len(out.Labels)),
		zap.Int("accepted", len(detections)))

	return detections, nil
}
