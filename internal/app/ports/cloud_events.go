package ports

import "farmsim/internal/domain/weather"

// CloudEventSink receives one notification per state-changing action of the
// environment. Sinks observe only; they must not mutate world state.
type CloudEventSink interface {
	CloudRained(cloudID, tileID, amount int)
	CloudMoved(cloudID, water, fromTileID, toTileID int)
	SunlightReading(tileID, sunlight int)
	CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID int)
	CloudStuckInVillage(cloudID, tileID int)
	CloudDissipated(cloudID, tileID int)
	CloudFinalPosition(cloudID, tileID, sunlight int)
	SoilMoistureBelowThreshold(fields, plantations int)
}

// NopCloudEvents discards every notification.
type NopCloudEvents struct{}

func (NopCloudEvents) CloudRained(int, int, int) {}
func (NopCloudEvents) CloudMoved(int, int, int, int) {}
func (NopCloudEvents) SunlightReading(int, int) {}
func (NopCloudEvents) CloudsMerged(int, int, int, int, int, int) {}
func (NopCloudEvents) CloudStuckInVillage(int, int) {}
func (NopCloudEvents) CloudDissipated(int, int) {}
func (NopCloudEvents) CloudFinalPosition(int, int, int) {}
func (NopCloudEvents) SoilMoistureBelowThreshold(int, int) {}

// EventJournal buffers sink notifications as journal records between drains.
type EventJournal interface {
	CloudEventSink
	SetTick(tick int)
	Drain() []weather.Event
}
