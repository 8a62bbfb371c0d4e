package starboard

import (
	"guildkeeper/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for starboard administration.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the starboard routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/starboard")
	group.Get("/:guild", h.HandleList)
	group.Post("/:guild", h.HandleCreate)
	group.Put("/:guild/:board/targets", h.HandleRedirect)
	group.Patch("/:guild/:board", h.HandleSetMinLimit)
}

type createRequest struct {
	Name string `json:"name"`
}

type redirectRequest struct {
	Targets []string `json:"targets"`
}

type limitRequest struct {
	MinLimit int `json:"min_limit"`
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	if IsConfigError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleList lists the starboard configs of a guild.
// @Summary List Starboards
// @Tags starboard
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {array} models.Config
// @Router /starboard/{guild} [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	configs, err := h.service.Configs(c.UserContext(), c.Params("guild"))
	if err != nil {
		return h.fail(c, "Listing starboards failed", err)
	}
	return c.JSON(configs)
}

// HandleCreate creates or registers a board channel.
// @Summary Create Starboard
// @Tags starboard
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string "Configuration Error"
// @Router /starboard/{guild} [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	board, err := h.service.CreateBoard(c.UserContext(), c.Params("guild"), req.Name)
	if err != nil {
		return h.fail(c, "Creating starboard failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"channel_id": board.ID,
		"name":       board.Name,
	})
}

// HandleRedirect replaces the targets of a board.
// @Summary Redirect Starboard
// @Tags starboard
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Param board path string true "Board Channel ID"
// @Success 200 {object} RedirectSummary
// @Failure 400 {object} map[string]string "Configuration Error"
// @Router /starboard/{guild}/{board}/targets [put]
func (h *Handler) HandleRedirect(c *fiber.Ctx) error {
	var req redirectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	summary, err := h.service.Redirect(c.UserContext(), c.Params("guild"), req.Targets, c.Params("board"))
	if err != nil {
		return h.fail(c, "Redirecting starboard failed", err)
	}
	return c.JSON(summary)
}

// HandleSetMinLimit changes the reaction floor of a board.
// @Summary Set Starboard Minimum
// @Tags starboard
// @Accept json
// @Param guild path string true "Guild ID"
// @Param board path string true "Board Channel ID"
// @Success 204
// @Failure 400 {object} map[string]string "Configuration Error"
// @Router /starboard/{guild}/{board} [patch]
func (h *Handler) HandleSetMinLimit(c *fiber.Ctx) error {
	var req limitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SetMinLimit(c.UserContext(), c.Params("guild"), c.Params("board"), req.MinLimit); err != nil {
		return h.fail(c, "Updating starboard failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
