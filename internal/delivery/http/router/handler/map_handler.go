package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"fleetwatch/internal/delivery/http/response"
	domainerrors "fleetwatch/internal/domain/errors"
	"fleetwatch/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// MapHandlerParams holds dependencies for MapHandler, injected by Fx.
type MapHandlerParams struct {
	fx.In

	MapUC  usecase.FleetMapUsecase
	Logger *slog.Logger
}

// MapHandler holds dependencies for the fleet map endpoint
type MapHandler struct {
	mapUC  usecase.FleetMapUsecase
	logger *slog.Logger
}

// NewMapHandler is the constructor for MapHandler
func NewMapHandler(params MapHandlerParams) *MapHandler {
	return &MapHandler{
		mapUC:  params.MapUC,
		logger: params.Logger,
	}
}

// Clusters handles grouping the current vehicle set into map markers.
// Status toggles default to on so an unfiltered request shows the whole
// fleet.
func (h *MapHandler) Clusters(c echo.Context) error {
	zoom := 12
	if raw := c.QueryParam("zoom"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_ZOOM", "Invalid zoom level")
		}
		zoom = parsed
	}

	filter := usecase.StatusFilter{
		ShowActive:      queryToggle(c, "active"),
		ShowMaintenance: queryToggle(c, "maintenance"),
		ShowIdle:        queryToggle(c, "idle"),
	}

	clusters, err := h.mapUC.Clusters(c.Request().Context(), zoom, filter)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, clusters, "Fleet map clusters computed successfully")
}

// queryToggle reads a boolean query parameter that defaults to true when
// absent or unparseable.
func queryToggle(c echo.Context, name string) bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return true
	}

	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}

	return parsed
}

// handleAppError handles application errors
func (h *MapHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return errors.WithStack(err)
}
