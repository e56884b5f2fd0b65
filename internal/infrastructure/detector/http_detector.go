package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/domain/repository"
	"go.uber.org/zap"
)

type httpDetector struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

type detectRequest struct {
	ImagePath      string   `json:"image_path"`
	Classes        []string `json:"classes"`
	MinProbability float64  `json:"min_probability"`
}

type detectResponse struct {
	Detections []detectedObject `json:"detections"`
}

// detectedObject mirrors the model server output. BoxPoints is
// (left, top, right, bottom) in pixels.
type detectedObject struct {
	Name                  string    `json:"name"`
	PercentageProbability float64   `json:"percentage_probability"`
	BoxPoints             []float64 `json:"box_points"`
}

// NewHTTPDetector creates a client for the object detection model server.
func NewHTTPDetector(cfg *config.DetectorConfig, logger *zap.Logger) repository.Detector {
	return &httpDetector{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

func (d *httpDetector) Detect(ctx context.Context, imagePath string, classes []string, minConfidence float64) ([]domain.Detection, error) {
	body, err := json.Marshal(detectRequest{
		ImagePath:      imagePath,
		Classes:        classes,
		MinProbability: minConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	d.logger.Debug("Calling detector",
		zap.String("image_path", imagePath),
		zap.Strings("classes", classes))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Error("Failed to execute detector request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		d.logger.Error("Detector returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("detector error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var detectResp detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detectResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	allowed := classSet(classes)
	detections := make([]domain.Detection, 0, len(detectResp.Detections))
	for i, obj := range detectResp.Detections {
		if len(obj.BoxPoints) != 4 {
			return nil, fmt.Errorf("detection %d: expected 4 box points, got %d", i, len(obj.BoxPoints))
		}
		if !accept(allowed, obj.Name, obj.PercentageProbability, minConfidence) {
			continue
		}
		detections = append(detections, domain.Detection{
			Box:        domain.NewBoundingBox(obj.BoxPoints[0], obj.BoxPoints[1], obj.BoxPoints[2], obj.BoxPoints[3]),
			Confidence: obj.PercentageProbability,
			Label:      obj.Name,
		})
	}

	d.logger.Debug("Detector call successful",
		zap.Int("returned", len(detectResp.Detections)),
		zap.Int("accepted", len(detections)))

	return detections, nil
}
