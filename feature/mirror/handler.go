package mirror

import (
	"guildkeeper/core/logger"
	"guildkeeper/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the guild mirror.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Post("/:guild/sync", h.HandleSync)
	group.Get("/:guild/reports", h.HandleListReports)
}

// HandleSync reconciles the mirror of one guild.
// @Summary Sync Guild Mirror
// @Description Diff the live guild against the mirror and apply creates, updates and soft deletes.
// @Tags mirror
// @Produce json
// @Param guild path string true "Guild ID"
// @Param dry_run query bool false "Only compute the diff"
// @Success 200 {object} Report "Sync Report"
// @Failure 500 {object} map[string]any "Partial Report"
// @Failure 502 {object} map[string]string "Snapshot Failed"
// @Router /mirror/{guild}/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	guildID := c.Params("guild")
	l := logger.WithGuild(logger.WithRayID(h.service.logger, c), guildID)

	report, err := h.service.RunSync(c.UserContext(), guildID, reconcile.Options{DryRun: c.QueryBool("dry_run")})
	if err != nil {
		if report == nil {
			l.Error("Live snapshot failed", zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Sync finished with errors", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}

	return c.JSON(report)
}

// HandleListReports lists the archived sync reports of a guild.
// @Summary List Sync Reports
// @Tags mirror
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {object} map[string][]string "Report Keys"
// @Router /mirror/{guild}/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	guildID := c.Params("guild")
	keys, err := h.service.Reports(c.UserContext(), guildID)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing sync reports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"reports": keys})
}
