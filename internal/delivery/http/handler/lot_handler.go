package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/parking-occupancy/internal/pkg/utils"
	"github.com/parking-occupancy/internal/usecase/dto"
	"go.uber.org/zap"
)

// LotHandler - parking lot endpoints
type LotHandler struct {
	parkingUC ParkingService
	logger    *zap.Logger
}

func NewLotHandler(parkingUC ParkingService, logger *zap.Logger) *LotHandler {
	return &LotHandler{
		parkingUC: parkingUC,
		logger:    logger,
	}
}

// CreateLot godoc
// @Summary Create a parking lot
// @Tags Lots
// @Accept json
// @Produce json
// @Param request body dto.CreateLotRequest true "Lot"
// @Success 201 {object} utils.SuccessResponse{data=domain.Lot}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/lots [post]
func (h *LotHandler) CreateLot(c *fiber.Ctx) error {
	var req dto.CreateLotRequest
	if err := parseBody(c, &req); err != nil {
		return sendError(c, h.logger, err)
	}

	lot, err := h.parkingUC.CreateLot(c.Context(), req)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendCreated(c, lot)
}

// ListLots godoc
// @Summary List parking lots
// @Tags Lots
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Lot}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/lots [get]
func (h *LotHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.parkingUC.ListLots(c.Context())
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, lots, &utils.Meta{Total: len(lots)})
}

// ListSectors godoc
// @Summary List sectors of a lot
// @Tags Lots
// @Produce json
// @Param id path string true "Lot ID"
// @Success 200 {object} utils.SuccessResponse{data=[]domain.Sector}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/lots/{id}/sectors [get]
func (h *LotHandler) ListSectors(c *fiber.Ctx) error {
	lotID, err := parseIDParam(c, "id")
	if err != nil {
		return sendError(c, h.logger, err)
	}

	sectors, err := h.parkingUC.ListSectors(c.Context(), lotID)
	if err != nil {
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, sectors, &utils.Meta{Total: len(sectors)})
}
