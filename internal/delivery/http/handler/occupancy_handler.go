package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/pkg/utils"
	"github.com/parking-occupancy/internal/usecase/dto"
	"go.uber.org/zap"
)

// OccupancyHandler - image registration and detection passes
type OccupancyHandler struct {
	parkingUC        ParkingService
	calibrationUC    CalibrationService
	reconciliationUC ReconciliationService
	logger           *zap.Logger
}

func NewOccupancyHandler(
	parkingUC ParkingService,
	calibrationUC CalibrationService,
	reconciliationUC ReconciliationService,
	logger *zap.Logger,
) *OccupancyHandler {
	return &OccupancyHandler{
		parkingUC:        parkingUC,
		calibrationUC:    calibrationUC,
		reconciliationUC: reconciliationUC,
		logger:           logger,
	}
}

// RegisterImageResponse is the registered image plus the outcome of the
// pass requested with it, if any.
type RegisterImageResponse struct {
	Image          *domain.Image             `json:"image"`
	Calibration    *dto.CalibrationResult    `json:"calibration,omitempty"`
	Reconciliation *dto.ReconciliationResult `json:"reconciliation,omitempty"`
}

// RegisterImage godoc
// @Summary Register a captured sector image
// @Description Records an image of the sector. With process=reconcile or process=calibrate the pass runs on it before the response.
// @Tags Occupancy
// @Accept json
// @Produce json
// @Param id path string true "Sector ID"
// @Param request body dto.RegisterImageRequest true "Image"
// @Success 201 {object} utils.SuccessResponse{data=RegisterImageResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id}/images [post]
func (h *OccupancyHandler) RegisterImage(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	var req dto.RegisterImageRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, h.logger, err)
	}

	image, err := h.parkingUC.RegisterImage(c.Context(), sectorID, req)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	resp := RegisterImageResponse{Image: image}
	switch domain.ImagePurpose(req.Process) {
	case domain.PurposeCalibrate:
		resp.Calibration, err = h.calibrationUC.CalibrateImage(c.Context(), image.ID)
	case domain.PurposeReconcile:
		resp.Reconciliation, err = h.reconciliationUC.ReconcileImage(c.Context(), image.ID)
	}
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendCreated(c, resp)
}

// Calibrate godoc
// @Summary Calibrate a sector
// @Description Detects objects on the image and replaces every spot of the sector with one vacant spot per detected box. Without image_path the latest image of the sector is used.
// @Tags Occupancy
// @Accept json
// @Produce json
// @Param id path string true "Sector ID"
// @Param request body dto.PassRequest false "Image"
// @Success 200 {object} utils.SuccessResponse{data=dto.CalibrationResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id}/calibrate [post]
func (h *OccupancyHandler) Calibrate(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	var req dto.PassRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, h.logger, err)
	}

	start := time.Now()
	result, err := h.calibrationUC.Calibrate(c.Context(), sectorID, req.ImagePath)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Spots),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// Reconcile godoc
// @Summary Reconcile sector occupancy
// @Description Marks spots full or vacant from the detections on the image and records a parking event for every vacated spot. Without image_path the latest image of the sector is used.
// @Tags Occupancy
// @Accept json
// @Produce json
// @Param id path string true "Sector ID"
// @Param request body dto.PassRequest false "Image"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReconciliationResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id}/reconcile [post]
func (h *OccupancyHandler) Reconcile(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	var req dto.PassRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, h.logger, err)
	}

	start := time.Now()
	result, err := h.reconciliationUC.Reconcile(c.Context(), sectorID, req.ImagePath)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Updated,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// ReconcileImage godoc
// @Summary Reconcile from a registered image
// @Description Reconciles the sector the image belongs to, using that image.
// @Tags Occupancy
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReconciliationResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/images/{id}/reconcile [post]
func (h *OccupancyHandler) ReconcileImage(c *fiber.Ctx) error {
	imageID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	result, err := h.reconciliationUC.ReconcileImage(c.Context(), imageID)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Updated})
}
