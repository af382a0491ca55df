// Package charts turns resolved Treasury Bill series into chart-ready data.
package charts

import (
	"fmt"
	"time"

	"github.com/aristath/tbills/internal/domain"
	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // Price per $100
}

// SeriesStats summarizes the discount rates of one term's series.
type SeriesStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TermChart is the chart payload for one term length.
type TermChart struct {
	Term   string           `json:"term"`
	Points []ChartDataPoint `json:"points"`
	SMA    []ChartDataPoint `json:"sma,omitempty"`
	Stats  SeriesStats      `json:"stats"`
}

// Resolver produces a usable series per term length (cache or fresh fetch).
type Resolver interface {
	Resolve(now time.Time) (map[domain.TermLength]domain.TimeSeries, error)
}

// Service provides chart data operations
type Service struct {
	resolver Resolver
	log      zerolog.Logger
}

// NewService creates a new charts service
func NewService(resolver Resolver, log zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		log:      log.With().Str("service", "charts").Logger(),
	}
}

// BuildCharts resolves all five term lengths and converts each series to
// chart data. smaPeriod > 1 adds a simple-moving-average overlay; shorter
// series just omit it.
func (s *Service) BuildCharts(now time.Time, smaPeriod int) ([]TermChart, error) {
	resolved, err := s.resolver.Resolve(now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bill series: %w", err)
	}

	charts := make([]TermChart, 0, len(resolved))
	for _, term := range domain.AllTermLengths() {
		series, ok := resolved[term]
		if !ok {
			return nil, fmt.Errorf("resolver returned no series for %s", term)
		}
		charts = append(charts, buildTermChart(term, series, smaPeriod))
	}

	return charts, nil
}

func buildTermChart(term domain.TermLength, series domain.TimeSeries, smaPeriod int) TermChart {
	chart := TermChart{
		Term:   string(term),
		Points: make([]ChartDataPoint, 0, len(series)),
	}

	values := make([]float64, 0, len(series))
	for _, p := range series {
		chart.Points = append(chart.Points, ChartDataPoint{
			Time:  p.IssueDate.Format("2006-01-02"),
			Value: p.PricePer100,
		})
		values = append(values, p.PricePer100)
	}

	chart.Stats = computeStats(values)

	if smaPeriod > 1 && len(values) >= smaPeriod {
		sma := talib.Sma(values, smaPeriod)
		// talib pads the warm-up window with zeros; skip it.
		chart.SMA = make([]ChartDataPoint, 0, len(sma)-smaPeriod+1)
		for i := smaPeriod - 1; i < len(sma); i++ {
			chart.SMA = append(chart.SMA, ChartDataPoint{
				Time:  chart.Points[i].Time,
				Value: sma[i],
			})
		}
	}

	return chart
}

func computeStats(values []float64) SeriesStats {
	stats := SeriesStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	stats.Mean = stat.Mean(values, nil)
	stats.Min = floats.Min(values)
	stats.Max = floats.Max(values)
	if len(values) > 1 {
		stats.StdDev = stat.StdDev(values, nil)
	}

	return stats
}
