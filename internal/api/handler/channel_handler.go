package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pegasusdeploy/platform-api/internal/api/metrics"
	"github.com/pegasusdeploy/platform-api/internal/core/ports"
)

// ChannelHandler handles HTTP requests for deployment channels.
type ChannelHandler struct {
	service ports.ChannelService
}

func NewChannelHandler(service ports.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

// Create handles POST /v1/channels.
//
// @Summary      Create a deployment channel
// @Tags         channels
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createChannelRequest  true  "Channel details"
// @Success      201   {object}  channelResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/channels [post]
func (h *ChannelHandler) Create(c echo.Context) error {
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	created, err := h.service.CreateChannel(c.Request().Context(), req.Name, req.Domain)
	if err != nil {
		return err
	}

	metrics.ChannelsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toChannelResponse(created))
}

// List handles GET /v1/channels.
//
// @Summary      List deployment channels
// @Tags         channels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  channelResponse
// @Router       /v1/channels [get]
func (h *ChannelHandler) List(c echo.Context) error {
	channels, err := h.service.ListChannels(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		out = append(out, toChannelResponse(ch))
	}
	return c.JSON(http.StatusOK, out)
}
