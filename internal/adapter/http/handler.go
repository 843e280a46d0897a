package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"farmsim/internal/app/environment"
	"farmsim/internal/app/ports"
	"farmsim/internal/app/simulation"
	"farmsim/internal/domain/weather"
	"farmsim/internal/domain/world"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const defaultEventLimit = 100

// Simulation is the slice of simulation.Runner the API drives.
type Simulation interface {
	Advance(ctx context.Context, n int) (simulation.AdvanceResult, error)
	CreateCloud(ctx context.Context, tileID, duration, amount int) (weather.Cloud, error)
	ExpandVillage(ctx context.Context, tileID int) error
	Schedule(inc simulation.Incident) error
	Clouds() []weather.Cloud
	Tile(tileID int) (simulation.TileView, error)
	Events(ctx context.Context, limit int) ([]weather.Event, error)
	Status() simulation.Status
}

type Handler struct {
	Sim Simulation
	KPI kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	sim := s.Group("/api/sim")
	sim.POST("/tick", h.tick)
	sim.POST("/clouds", h.createCloud)
	sim.POST("/villages", h.expandVillage)
	sim.POST("/incidents", h.scheduleIncident)
	sim.GET("/status", h.status)
	sim.GET("/clouds", h.clouds)
	sim.GET("/tiles/:id", h.tile)
	sim.GET("/events", h.events)

	s.GET("/ops/kpi", h.kpi)
}

type tickRequest struct {
	Ticks int `json:"ticks"`
}

type createCloudRequest struct {
	TileID   *int `json:"tile_id"`
	Duration int  `json:"duration"`
	Amount   int  `json:"amount"`
}

type villageRequest struct {
	TileID *int `json:"tile_id"`
}

type incidentRequest struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	Tick     int    `json:"tick"`
	TileID   int    `json:"tile_id,omitempty"`
	TileIDs  []int  `json:"tile_ids,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

const (
	incidentCloudCreation = "cloud_creation"
	incidentCityExpansion = "city_expansion"
)

func (h Handler) tick(c context.Context, ctx *app.RequestContext) {
	var body tickRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.Ticks == 0 {
		body.Ticks = 1
	}

	resp, err := h.Sim.Advance(c, body.Ticks)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) createCloud(c context.Context, ctx *app.RequestContext) {
	var body createCloudRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.TileID == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "tile_id is required")
		return
	}

	cloud, err := h.Sim.CreateCloud(c, *body.TileID, body.Duration, body.Amount)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, cloud)
}

func (h Handler) expandVillage(c context.Context, ctx *app.RequestContext) {
	var body villageRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if body.TileID == nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "tile_id is required")
		return
	}

	if err := h.Sim.ExpandVillage(c, *body.TileID); err != nil {
		writeError(ctx, err)
		return
	}
	view, err := h.Sim.Tile(*body.TileID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

func (h Handler) scheduleIncident(_ context.Context, ctx *app.RequestContext) {
	var body incidentRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	var inc simulation.Incident
	switch strings.TrimSpace(body.Kind) {
	case incidentCloudCreation:
		inc = simulation.CloudCreation{ID: body.ID, Tick: body.Tick, TileIDs: body.TileIDs, Amount: body.Amount, Duration: body.Duration}
	case incidentCityExpansion:
		inc = simulation.CityExpansion{ID: body.ID, Tick: body.Tick, TileID: body.TileID}
	default:
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_incident_kind", "kind must be cloud_creation or city_expansion")
		return
	}

	if err := h.Sim.Schedule(inc); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, map[string]any{"scheduled": body})
}

func (h Handler) status(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Sim.Status())
}

func (h Handler) clouds(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"clouds": h.Sim.Clouds()})
}

func (h Handler) tile(_ context.Context, ctx *app.RequestContext) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_tile_id", "tile id must be an integer")
		return
	}
	view, err := h.Sim.Tile(id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, view)
}

func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	limit := defaultEventLimit
	if raw := string(ctx.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	events, err := h.Sim.Events(c, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"events": events})
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, simulation.ErrWorldHalted):
		writeErrorBody(ctx, consts.StatusConflict, "world_halted", err.Error())
	case errors.Is(err, environment.ErrIntegrity):
		writeErrorBody(ctx, consts.StatusInternalServerError, "integrity_violation", err.Error())
	case errors.Is(err, environment.ErrVillageTile):
		writeErrorBody(ctx, consts.StatusConflict, "village_tile", err.Error())
	case errors.Is(err, world.ErrUnknownTile):
		writeErrorBody(ctx, consts.StatusNotFound, "unknown_tile", err.Error())
	case errors.Is(err, simulation.ErrInvalidRequest),
		errors.Is(err, weather.ErrInvalidCloud):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
