package slogsink

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"farmsim/internal/app/ports"
)

// LevelImportant sits between INFO and WARN and marks rain and merges.
const LevelImportant = slog.Level(2)

// ReplaceLevel renders LevelImportant as IMPORTANT; pass it as
// slog.HandlerOptions.ReplaceAttr.
func ReplaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelImportant {
		a.Value = slog.StringValue("IMPORTANT")
	}
	return a
}

// ParseLevel accepts debug, info, important and warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "important":
		return LevelImportant, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

func liters(v int) string {
	return humanize.Comma(int64(v)) + " L"
}

// Sink writes cloud notifications to a slog logger.
type Sink struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{log: logger.With("component", "weather")}
}

func (s *Sink) emit(level slog.Level, msg string, args ...any) {
	s.log.Log(context.Background(), level, msg, args...)
}

func (s *Sink) CloudRained(cloudID, tileID, amount int) {
	s.emit(LevelImportant, "cloud rained", "cloud_id", cloudID, "tile_id", tileID, "amount", liters(amount))
}

func (s *Sink) CloudMoved(cloudID, water, fromTileID, toTileID int) {
	s.emit(slog.LevelInfo, "cloud moved", "cloud_id", cloudID, "water", liters(water), "from", fromTileID, "to", toTileID)
}

func (s *Sink) SunlightReading(tileID, sunlight int) {
	s.emit(slog.LevelDebug, "sunlight", "tile_id", tileID, "hours", sunlight)
}

func (s *Sink) CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID int) {
	s.emit(LevelImportant, "clouds merged",
		"moving_id", movingID,
		"stationary_id", stationaryID,
		"merged_id", mergedID,
		"water", liters(water),
		"duration", duration,
		"tile_id", tileID,
	)
}

func (s *Sink) CloudStuckInVillage(cloudID, tileID int) {
	s.emit(slog.LevelInfo, "cloud stuck in village", "cloud_id", cloudID, "tile_id", tileID)
}

func (s *Sink) CloudDissipated(cloudID, tileID int) {
	s.emit(slog.LevelInfo, "cloud dissipated", "cloud_id", cloudID, "tile_id", tileID)
}

func (s *Sink) CloudFinalPosition(cloudID, tileID, sunlight int) {
	s.emit(slog.LevelDebug, "cloud position", "cloud_id", cloudID, "tile_id", tileID, "sunlight", sunlight)
}

func (s *Sink) SoilMoistureBelowThreshold(fields, plantations int) {
	s.emit(slog.LevelInfo, "soil moisture below threshold", "fields", fields, "plantations", plantations)
}

var _ ports.CloudEventSink = (*Sink)(nil)
