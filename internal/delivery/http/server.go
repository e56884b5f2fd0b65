package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/delivery/http/handler"
	"github.com/parking-occupancy/internal/delivery/http/middleware"
	apperrors "github.com/parking-occupancy/internal/pkg/errors"
	"github.com/parking-occupancy/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers groups the endpoint handlers mounted by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Lot       *handler.LotHandler
	Sector    *handler.SectorHandler
	Occupancy *handler.OccupancyHandler
	Stats     *handler.StatsHandler
}

// Server - HTTP server built on Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	// Detection passes block on model inference, so the write timeout
	// follows the detector pass timeout.
	writeTimeout := cfg.Detector.PassTimeout + 10*time.Second

	app := fiber.New(fiber.Config{
		AppName:      "Parking Occupancy Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.handlers.Health.Health)

	// Lots
	api.Post("/lots", s.handlers.Lot.CreateLot)
	api.Get("/lots", s.handlers.Lot.ListLots)
	api.Get("/lots/:id/sectors", s.handlers.Lot.ListSectors)

	// Sectors
	api.Post("/sectors", s.handlers.Sector.CreateSector)
	api.Get("/sectors/:id", s.handlers.Sector.GetSector)
	api.Get("/sectors/:id/spots", s.handlers.Sector.GetSpots)
	api.Get("/sectors/:id/events", s.handlers.Sector.ListEvents)
	api.Get("/spots/:id/events", s.handlers.Sector.ListSpotEvents)

	// Images and detection passes
	api.Post("/sectors/:id/images", s.handlers.Occupancy.RegisterImage)
	api.Post("/sectors/:id/calibrate", s.handlers.Occupancy.Calibrate)
	api.Post("/sectors/:id/reconcile", s.handlers.Occupancy.Reconcile)
	api.Post("/images/:id/reconcile", s.handlers.Occupancy.ReconcileImage)

	// Stats
	api.Get("/stats", s.handlers.Stats.GetStatistics)
}

// App exposes the Fiber app, used by tests through app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler answers errors that escaped the handlers, such as
// unknown routes, in the same envelope as utils.SendError.
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		if code == fiber.StatusInternalServerError {
			return utils.SendError(c, err)
		}
		return c.Status(code).JSON(utils.ErrorResponse{
			Error: apperrors.New(httpCode(code), err.Error(), code),
		})
	}
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	default:
		return "HTTP_ERROR"
	}
}
