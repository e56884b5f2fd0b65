package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/parking-occupancy/internal/domain"
	"github.com/parking-occupancy/internal/pkg/utils"
	"go.uber.org/zap"
)

// StatsHandler serves occupancy statistics
type StatsHandler struct {
	statsUC StatsService
	logger  *zap.Logger
}

func NewStatsHandler(statsUC StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsUC: statsUC,
		logger:  logger,
	}
}

// StatsResponse adds derived figures to the raw counters.
type StatsResponse struct {
	Statistics    *domain.Statistics `json:"statistics"`
	OccupancyRate float64            `json:"occupancy_rate"`
}

// GetStatistics godoc
// @Summary Get occupancy statistics
// @Description Aggregated counters over all lots: sectors, spots, full spots, occupancy rate, parking events of the last 24h and average stay.
// @Tags Statistics
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} utils.SuccessResponse{data=StatsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	ctx := c.Context()

	h.logger.Debug("Handling get statistics request")

	getStats := h.statsUC.GetStatistics
	if c.QueryBool("refresh") {
		getStats = h.statsUC.RefreshStatistics
	}

	stats, err := getStats(ctx)
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return sendError(c, h.logger, err)
	}

	return utils.SendSuccess(c, StatsResponse{
		Statistics:    stats,
		OccupancyRate: stats.Spots.OccupancyRate(),
	}, nil)
}
