package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Measurement is a numeric station reading. The upstream feed serves
// values inconsistently as JSON numbers, numeric strings, or null, so
// the raw text is kept alongside the parsed value for export.
type Measurement struct {
	Raw   string
	Value float64
	Valid bool
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = Measurement{}
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	m.Raw = s
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		m.Valid = false
		return nil
	}
	m.Value = v
	m.Valid = true
	return nil
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		if m.Raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(m.Raw)
	}
	return json.Marshal(m.Value)
}

// String returns the value as served by the feed, for CSV export.
func (m Measurement) String() string {
	return m.Raw
}

const obsTimeLayout = "2006-01-02 15:04:05"

// ObsTime parses the feed's observation timestamps, which appear both
// as RFC 3339 and as plain "YYYY-MM-DD HH:MM:SS" strings.
type ObsTime struct {
	time.Time
}

func (t *ObsTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, obsTimeLayout, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized observation timestamp %q", s)
}

func (t ObsTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(obsTimeLayout))
}

// Observation is one time-stamped station record from the feed.
type Observation struct {
	Station        string      `json:"Station"`
	Latitude       Measurement `json:"Latitude"`
	Longitude      Measurement `json:"Longitude"`
	DateTime       ObsTime     `json:"DateTime"`
	TideHeight     Measurement `json:"TIDE HEIGHT"`
	WindSpeed      Measurement `json:"WIND SPEED"`
	WindDir        Measurement `json:"WIND DIR"`
	AirPressure    Measurement `json:"AIR PRESSURE"`
	AirTemperature Measurement `json:"AIR TEMPERATURE"`
	Dewpoint       Measurement `json:"DEWPOINT"`
	Humidity       Measurement `json:"HUMIDITY"`
	Surge          Measurement `json:"SURGE"`
}

// StationSummary is a live-overview row for the dashboard header.
type StationSummary struct {
	Station       string    `json:"station"`
	ObservedAt    time.Time `json:"observed_at"`
	Temperature   string    `json:"temperature"`
	WeatherIcon   string    `json:"weather_icon"`
	Humidity      string    `json:"humidity"`
	HumidityAlert bool      `json:"humidity_alert"`
	WindSpeed     string    `json:"wind_speed"`
	AirPressure   string    `json:"air_pressure"`
	TideHeight    string    `json:"tide_height,omitempty"`
	Surge         string    `json:"surge,omitempty"`
}

// StationStatus is the latest record per station, for map pins.
type StationStatus struct {
	Station     string    `json:"station"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ObservedAt  time.Time `json:"observed_at"`
	Temperature string    `json:"temperature"`
	WindSpeed   string    `json:"wind_speed"`
	Humidity    string    `json:"humidity"`
	AirPressure string    `json:"air_pressure"`
}

// SeriesPoint is one sample of a per-station parameter time series.
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}
