package bills

import (
	"fmt"
	"time"

	"github.com/aristath/tbills/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fetcher retrieves and transforms auction data for one term length.
// Implemented by the fiscaldata client; faked in tests.
type Fetcher interface {
	FetchBillAuctions(term domain.TermLength) (domain.TimeSeries, error)
}

// Manager resolves all five term lengths from the cache, falling back to a
// full batch refresh when any single term is stale. The refresh is
// all-or-nothing: a miss on one term re-fetches and overwrites all five,
// matching the upstream batch-fetch shape.
type Manager struct {
	store   *Store
	fetcher Fetcher
	log     zerolog.Logger
}

// NewManager creates a new cache manager.
func NewManager(store *Store, fetcher Fetcher, log zerolog.Logger) *Manager {
	return &Manager{
		store:   store,
		fetcher: fetcher,
		log:     log.With().Str("component", "bill_manager").Logger(),
	}
}

// Resolve returns a time series for every term length, either decoded from
// fresh cache records or freshly fetched. The `now` parameter is captured
// once by the caller and used for every freshness check, so the batch
// decision is made against a single point in time.
//
// Either all five series are returned or an error - there is no partial
// output, and fetch failures propagate without retries.
func (m *Manager) Resolve(now time.Time) (map[domain.TermLength]domain.TimeSeries, error) {
	terms := domain.AllTermLengths()
	blobs := make(map[domain.TermLength][]byte, len(terms))

	allFresh := true
	for _, term := range terms {
		blob, fresh, err := m.store.Get(term, now)
		if err != nil {
			return nil, err
		}
		if !fresh {
			allFresh = false
			break
		}
		blobs[term] = blob
	}

	if allFresh {
		result := make(map[domain.TermLength]domain.TimeSeries, len(terms))
		for term, blob := range blobs {
			series, err := Decode(blob)
			if err != nil {
				// Hash already verified, so this is a codec bug rather
				// than corruption - fatal, not self-healable.
				return nil, fmt.Errorf("fresh cache record for %s is undecodable: %w", term, err)
			}
			result[term] = series
		}
		m.log.Debug().Int("terms", len(result)).Msg("Cache hit for all term lengths")
		return result, nil
	}

	return m.Refresh(now)
}

// Refresh fetches all five term lengths, writes them back to the store with
// created_at = now, and returns the fresh series. Used by Resolve on any
// cache miss and directly by the forced-refresh surfaces (HTTP endpoint,
// cron job).
func (m *Manager) Refresh(now time.Time) (map[domain.TermLength]domain.TimeSeries, error) {
	runID := uuid.New().String()
	log := m.log.With().Str("run_id", runID).Logger()
	log.Info().Msg("Refreshing bill series cache")

	terms := domain.AllTermLengths()
	result := make(map[domain.TermLength]domain.TimeSeries, len(terms))
	blobs := make(map[domain.TermLength][]byte, len(terms))

	// Fetch and encode everything before touching the store, so a failure
	// partway through the batch cannot leave a partial refresh behind.
	for _, term := range terms {
		series, err := m.fetcher.FetchBillAuctions(term)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s auctions: %w", term, err)
		}

		blob, err := Encode(series)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s series: %w", term, err)
		}

		log.Debug().
			Str("term", string(term)).
			Int("points", len(series)).
			Msg("Fetched fresh series")

		result[term] = series
		blobs[term] = blob
	}

	if err := m.store.PutAll(blobs, now); err != nil {
		return nil, err
	}

	log.Info().Int("terms", len(result)).Msg("Bill series cache refreshed")
	return result, nil
}
