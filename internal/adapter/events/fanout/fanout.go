package fanout

import "farmsim/internal/app/ports"

// Sink forwards every notification to each member in order.
type Sink []ports.CloudEventSink

func New(sinks ...ports.CloudEventSink) Sink {
	out := make(Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f Sink) CloudRained(cloudID, tileID, amount int) {
	for _, s := range f {
		s.CloudRained(cloudID, tileID, amount)
	}
}

func (f Sink) CloudMoved(cloudID, water, fromTileID, toTileID int) {
	for _, s := range f {
		s.CloudMoved(cloudID, water, fromTileID, toTileID)
	}
}

func (f Sink) SunlightReading(tileID, sunlight int) {
	for _, s := range f {
		s.SunlightReading(tileID, sunlight)
	}
}

func (f Sink) CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID int) {
	for _, s := range f {
		s.CloudsMerged(movingID, stationaryID, mergedID, water, duration, tileID)
	}
}

func (f Sink) CloudStuckInVillage(cloudID, tileID int) {
	for _, s := range f {
		s.CloudStuckInVillage(cloudID, tileID)
	}
}

func (f Sink) CloudDissipated(cloudID, tileID int) {
	for _, s := range f {
		s.CloudDissipated(cloudID, tileID)
	}
}

func (f Sink) CloudFinalPosition(cloudID, tileID, sunlight int) {
	for _, s := range f {
		s.CloudFinalPosition(cloudID, tileID, sunlight)
	}
}

func (f Sink) SoilMoistureBelowThreshold(fields, plantations int) {
	for _, s := range f {
		s.SoilMoistureBelowThreshold(fields, plantations)
	}
}

var _ ports.CloudEventSink = Sink(nil)
