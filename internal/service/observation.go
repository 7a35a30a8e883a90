package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sync"
	"time"

	"github.com/langouL/meteopad/internal/domain"
	"github.com/langouL/meteopad/internal/feed"
	"github.com/langouL/meteopad/internal/logger"
)

// Chartable feed parameters, by upstream column name.
var seriesParams = []string{
	"AIR TEMPERATURE",
	"HUMIDITY",
	"WIND SPEED",
	"AIR PRESSURE",
	"TIDE HEIGHT",
	"SURGE",
}

// Tide gauge readings below this are sensor noise and are dropped from
// the tide series.
const minTideHeight = 0.3

var exportHeader = []string{
	"Station", "Latitude", "Longitude", "DateTime", "TIDE HEIGHT",
	"WIND SPEED", "WIND DIR", "AIR PRESSURE", "AIR TEMPERATURE",
	"DEWPOINT", "HUMIDITY",
}

type observationService struct {
	fetcher feed.Fetcher

	mu          sync.RWMutex
	rows        []domain.Observation // newest first
	refreshedAt time.Time
}

func NewObservationService(fetcher feed.Fetcher) ObservationService {
	return &observationService{fetcher: fetcher}
}

// Refresh replaces the snapshot with the latest feed contents. On
// error the previous snapshot is kept.
func (s *observationService) Refresh(ctx context.Context) error {
	rows, err := s.fetcher.FetchObservations(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh observations: %w", err)
	}

	s.mu.Lock()
	s.rows = rows
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	logger.Info("Observation snapshot refreshed", "rows", len(rows))
	return nil
}

func (s *observationService) snapshot() []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Latest returns the n most recent observations as summary rows.
func (s *observationService) Latest(n int) []domain.StationSummary {
	rows := s.snapshot()
	if n > len(rows) {
		n = len(rows)
	}

	summaries := make([]domain.StationSummary, 0, n)
	for i := 0; i < n; i++ {
		row := &rows[i]
		summaries = append(summaries, domain.StationSummary{
			Station:       row.Station,
			ObservedAt:    row.DateTime.Time,
			Temperature:   row.AirTemperature.String(),
			WeatherIcon:   WeatherIcon(row.AirTemperature),
			Humidity:      row.Humidity.String(),
			HumidityAlert: row.Humidity.Valid && row.Humidity.Value > 98,
			WindSpeed:     row.WindSpeed.String(),
			AirPressure:   row.AirPressure.String(),
			TideHeight:    row.TideHeight.String(),
			Surge:         row.Surge.String(),
		})
	}
	return summaries
}

// Stations returns the most recent observation per station, for the
// map. Rows without usable coordinates are skipped.
func (s *observationService) Stations() []domain.StationStatus {
	rows := s.snapshot()

	seen := make(map[string]bool)
	var stations []domain.StationStatus
	for i := range rows {
		row := &rows[i]
		if seen[row.Station] {
			continue
		}
		seen[row.Station] = true
		if !row.Latitude.Valid || !row.Longitude.Valid {
			continue
		}
		stations = append(stations, domain.StationStatus{
			Station:     row.Station,
			Latitude:    row.Latitude.Value,
			Longitude:   row.Longitude.Value,
			ObservedAt:  row.DateTime.Time,
			Temperature: row.AirTemperature.String(),
			WindSpeed:   row.WindSpeed.String(),
			Humidity:    row.Humidity.String(),
			AirPressure: row.AirPressure.String(),
		})
	}
	return stations
}

// Series returns the numeric time series of one parameter at one
// station, oldest first. Unparseable values are dropped.
func (s *observationService) Series(station, param string, from, to time.Time) ([]domain.SeriesPoint, error) {
	if !validParam(param) {
		return nil, fmt.Errorf("%w: unknown parameter %q", domain.ErrValidation, param)
	}

	rows := s.snapshot()
	var points []domain.SeriesPoint
	for i := len(rows) - 1; i >= 0; i-- {
		row := &rows[i]
		if row.Station != station || !inRange(row.DateTime.Time, from, to) {
			continue
		}
		m := measurementFor(row, param)
		if !m.Valid {
			continue
		}
		if param == "TIDE HEIGHT" && m.Value < minTideHeight {
			continue
		}
		points = append(points, domain.SeriesPoint{Time: row.DateTime.Time, Value: m.Value})
	}
	return points, nil
}

func (s *observationService) Parameters() []string {
	params := make([]string, len(seriesParams))
	copy(params, seriesParams)
	return params
}

// ExportCSV renders the date-filtered snapshot as the downloadable
// MeteoMarinePAD.csv. Values are exported as served by the feed.
func (s *observationService) ExportCSV(from, to time.Time) ([]byte, error) {
	rows := s.snapshot()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range rows {
		row := &rows[i]
		if !inRange(row.DateTime.Time, from, to) {
			continue
		}
		record := []string{
			row.Station,
			row.Latitude.String(),
			row.Longitude.String(),
			row.DateTime.Format("2006-01-02 15:04:05"),
			row.TideHeight.String(),
			row.WindSpeed.String(),
			row.WindDir.String(),
			row.AirPressure.String(),
			row.AirTemperature.String(),
			row.Dewpoint.String(),
			row.Humidity.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WeatherIcon classifies an air temperature reading for the live
// summary: cold below 25°C, mild below 30°C, hot otherwise.
func WeatherIcon(temp domain.Measurement) string {
	switch {
	case !temp.Valid:
		return ""
	case temp.Value < 25:
		return "🧊"
	case temp.Value < 30:
		return "🌤️"
	default:
		return "🔥"
	}
}

func validParam(param string) bool {
	for _, p := range seriesParams {
		if p == param {
			return true
		}
	}
	return false
}

func measurementFor(row *domain.Observation, param string) domain.Measurement {
	switch param {
	case "AIR TEMPERATURE":
		return row.AirTemperature
	case "HUMIDITY":
		return row.Humidity
	case "WIND SPEED":
		return row.WindSpeed
	case "AIR PRESSURE":
		return row.AirPressure
	case "TIDE HEIGHT":
		return row.TideHeight
	case "SURGE":
		return row.Surge
	}
	return domain.Measurement{}
}

// inRange treats zero bounds as open ends.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}
