package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/parking-occupancy/internal/pkg/utils"
	"github.com/parking-occupancy/internal/usecase/dto"
	"go.uber.org/zap"
)

// SectorHandler - sectors, their spots and parking history
type SectorHandler struct {
	parkingUC ParkingService
	logger    *zap.Logger
}

func NewSectorHandler(parkingUC ParkingService, logger *zap.Logger) *SectorHandler {
	return &SectorHandler{
		parkingUC: parkingUC,
		logger:    logger,
	}
}

// CreateSector godoc
// @Summary Create a sector
// @Description Creates a camera-observed sector inside a lot. Spots are created later by calibration.
// @Tags Sectors
// @Accept json
// @Produce json
// @Param request body dto.CreateSectorRequest true "Sector"
// @Success 201 {object} utils.SuccessResponse{data=domain.Sector}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sectors [post]
func (h *SectorHandler) CreateSector(c *fiber.Ctx) error {
	var req dto.CreateSectorRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, h.logger, err)
	}

	sector, err := h.parkingUC.CreateSector(c.Context(), req)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendCreated(c, sector)
}

// GetSector godoc
// @Summary Get a sector
// @Tags Sectors
// @Produce json
// @Param id path string true "Sector ID"
// @Success 200 {object} utils.SuccessResponse{data=domain.Sector}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id} [get]
func (h *SectorHandler) GetSector(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	sector, err := h.parkingUC.GetSector(c.Context(), sectorID)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, sector, nil)
}

// GetSpots godoc
// @Summary Current occupancy of a sector
// @Description Returns every spot of the sector with its geometry and state. Served from cache when warm.
// @Tags Sectors
// @Produce json
// @Param id path string true "Sector ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.SectorSpotsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id}/spots [get]
func (h *SectorHandler) GetSpots(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	result, err := h.parkingUC.GetSectorSpots(c.Context(), sectorID)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:  result.Total,
		Cached: result.Cached,
	})
}

// ListEvents godoc
// @Summary Parking events of a sector
// @Description Completed stays, newest first.
// @Tags Events
// @Produce json
// @Param id path string true "Sector ID"
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {object} utils.SuccessResponse{data=dto.EventsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sectors/{id}/events [get]
func (h *SectorHandler) ListEvents(c *fiber.Ctx) error {
	sectorID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}
	limit, err := parseLimit(c)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	result, err := h.parkingUC.ListSectorEvents(c.Context(), sectorID, limit)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total, Limit: limit})
}

// ListSpotEvents godoc
// @Summary Parking events of a spot
// @Tags Events
// @Produce json
// @Param id path string true "Spot ID"
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {object} utils.SuccessResponse{data=dto.EventsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/spots/{id}/events [get]
func (h *SectorHandler) ListSpotEvents(c *fiber.Ctx) error {
	spotID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}
	limit, err := parseLimit(c)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	result, err := h.parkingUC.ListSpotEvents(c.Context(), spotID, limit)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: result.Total, Limit: limit})
}
