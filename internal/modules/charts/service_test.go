package charts

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tbills/internal/domain"
)

type fakeResolver struct {
	resolved map[domain.TermLength]domain.TimeSeries
	err      error
}

func (f *fakeResolver) Resolve(now time.Time) (map[domain.TermLength]domain.TimeSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resolved, nil
}

func fullResolver() *fakeResolver {
	resolved := make(map[domain.TermLength]domain.TimeSeries)
	for _, term := range domain.AllTermLengths() {
		series := make(domain.TimeSeries, 0, 4)
		for week := 0; week < 4; week++ {
			series = append(series, domain.AuctionPoint{
				IssueDate:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*week),
				CUSIP:       "912797GD6",
				PricePer100: 99.5 + float64(week)/10,
				BidToCover:  2.5,
			})
		}
		resolved[term] = series
	}
	return &fakeResolver{resolved: resolved}
}

func TestBuildChartsConvertsAllTerms(t *testing.T) {
	service := NewService(fullResolver(), zerolog.Nop())

	termCharts, err := service.BuildCharts(time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, termCharts, 5)

	// Ordered by ascending term duration.
	assert.Equal(t, "4-Week", termCharts[0].Term)
	assert.Equal(t, "52-Week", termCharts[4].Term)

	chart := termCharts[0]
	require.Len(t, chart.Points, 4)
	assert.Equal(t, "2024-01-02", chart.Points[0].Time)
	assert.Equal(t, 99.5, chart.Points[0].Value)
	assert.Equal(t, "2024-01-23", chart.Points[3].Time)
	assert.Empty(t, chart.SMA)
}

func TestBuildChartsStats(t *testing.T) {
	service := NewService(fullResolver(), zerolog.Nop())

	termCharts, err := service.BuildCharts(time.Now(), 0)
	require.NoError(t, err)

	stats := termCharts[0].Stats
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 99.65, stats.Mean, 1e-9)
	assert.Equal(t, 99.5, stats.Min)
	assert.Equal(t, 99.8, stats.Max)
	assert.Greater(t, stats.StdDev, 0.0)
}

func TestBuildChartsSMAOverlay(t *testing.T) {
	service := NewService(fullResolver(), zerolog.Nop())

	termCharts, err := service.BuildCharts(time.Now(), 2)
	require.NoError(t, err)

	chart := termCharts[0]
	// A period-2 SMA over 4 points yields 3 overlay points.
	require.Len(t, chart.SMA, 3)
	assert.Equal(t, chart.Points[1].Time, chart.SMA[0].Time)
	assert.InDelta(t, (99.5+99.6)/2, chart.SMA[0].Value, 1e-9)
}

func TestBuildChartsSMASkippedForShortSeries(t *testing.T) {
	service := NewService(fullResolver(), zerolog.Nop())

	termCharts, err := service.BuildCharts(time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, termCharts[0].SMA)
}

func TestBuildChartsMissingTerm(t *testing.T) {
	resolver := fullResolver()
	delete(resolver.resolved, domain.Term26Week)

	service := NewService(resolver, zerolog.Nop())

	_, err := service.BuildCharts(time.Now(), 0)
	assert.Error(t, err)
}

func TestBuildChartsResolverError(t *testing.T) {
	resolveErr := errors.New("fetch failed")
	service := NewService(&fakeResolver{err: resolveErr}, zerolog.Nop())

	_, err := service.BuildCharts(time.Now(), 0)
	assert.ErrorIs(t, err, resolveErr)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil)
	assert.Equal(t, 0, stats.Count)
	assert.Zero(t, stats.Mean)
}
