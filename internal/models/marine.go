package models

import "time"

// TideType represents whether a tide is high or low
type TideType string

const (
	TideHigh TideType = "HIGH"
	TideLow  TideType = "LOW"
)

// TideEvent represents a single high or low tide occurrence
type TideEvent struct {
	Time         time.Time `json:"time"`
	HeightMeters float64   `json:"heightMeters"` // relative to MLLW
	Type         TideType  `json:"type"`
}

// MarineObservation holds station and grid marine data for one day
type MarineObservation struct {
	StationID         string      `json:"stationId,omitempty"`
	StationName       string      `json:"stationName,omitempty"`
	StationDistanceKm *float64    `json:"stationDistanceKm,omitempty"`
	WaveHeightM       *float64    `json:"waveHeightM,omitempty"`
	WaterTempC        *float64    `json:"waterTempC,omitempty"`
	WindSpeedKph      *float64    `json:"windSpeedKph,omitempty"`
	WindDirectionDeg  *float64    `json:"windDirectionDeg,omitempty"`
	WindDirectionText string      `json:"windDirectionText,omitempty"`
	SwellDirectionDeg *float64    `json:"swellDirectionDeg,omitempty"`
	WindWaveHeightM   *float64    `json:"windWaveHeightM,omitempty"`
	VisibilityM       *float64    `json:"visibilityM,omitempty"`
	TideEvents        []TideEvent `json:"tideEvents,omitempty"`
}

// HasData reports whether any marine measurement is present
func (m *MarineObservation) HasData() bool {
	if m == nil {
		return false
	}
	return m.WaveHeightM != nil || m.WaterTempC != nil || m.WindSpeedKph != nil ||
		len(m.TideEvents) > 0
}

// Overlay returns a copy of m with every field set in other written over it.
// Either side may be nil.
func (m *MarineObservation) Overlay(other *MarineObservation) *MarineObservation {
	if other == nil {
		if m == nil {
			return nil
		}
		cp := *m
		return &cp
	}
	var out MarineObservation
	if m != nil {
		out = *m
	}
	if other.StationID != "" {
		out.StationID = other.StationID
	}
	if other.StationName != "" {
		out.StationName = other.StationName
	}
	if other.StationDistanceKm != nil {
		out.StationDistanceKm = other.StationDistanceKm
	}
	if other.WaveHeightM != nil {
		out.WaveHeightM = other.WaveHeightM
	}
	if other.WaterTempC != nil {
		out.WaterTempC = other.WaterTempC
	}
	if other.WindSpeedKph != nil {
		out.WindSpeedKph = other.WindSpeedKph
	}
	if other.WindDirectionDeg != nil {
		out.WindDirectionDeg = other.WindDirectionDeg
	}
	if other.WindDirectionText != "" {
		out.WindDirectionText = other.WindDirectionText
	}
	if other.SwellDirectionDeg != nil {
		out.SwellDirectionDeg = other.SwellDirectionDeg
	}
	if other.WindWaveHeightM != nil {
		out.WindWaveHeightM = other.WindWaveHeightM
	}
	if other.VisibilityM != nil {
		out.VisibilityM = other.VisibilityM
	}
	if other.TideEvents != nil {
		out.TideEvents = other.TideEvents
	}
	return &out
}

// EventsInWindow returns tide events with start <= t < start+24h
func EventsInWindow(events []TideEvent, start time.Time) []TideEvent {
	end := start.Add(24 * time.Hour)
	var out []TideEvent
	for _, e := range events {
		if !e.Time.Before(start) && e.Time.Before(end) {
			out = append(out, e)
		}
	}
	return out
}
