package fiscaldata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tbills/internal/domain"
)

const auctionsFixture = `{
	"data": [
		{
			"issue_date": "2024-01-16",
			"cusip": "912797GF1",
			"security_term": "4-Week",
			"price_per100": "99.586",
			"bid_to_cover_ratio": "2.64"
		},
		{
			"issue_date": "2024-01-09",
			"cusip": "912797GE4",
			"security_term": "4-Week",
			"price_per100": "null",
			"bid_to_cover_ratio": "3.01"
		},
		{
			"issue_date": "2024-01-02",
			"cusip": "912797GD6",
			"security_term": "4-Week",
			"price_per100": "99.578",
			"bid_to_cover_ratio": "2.85"
		}
	]
}`

func TestFetchBillAuctions(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounting/od/auctions_query", r.URL.Path)
		assert.Equal(t,
			"security_term:eq:4-Week,security_type:eq:Bill,issue_date:gte:2022-01-01",
			r.URL.Query().Get("filter"))
		assert.Equal(t, "-issue_date", r.URL.Query().Get("sort"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(auctionsFixture))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "2022-01-01", zerolog.Nop())

	series, err := client.FetchBillAuctions(domain.Term4Week)
	require.NoError(t, err)

	// The "null" row is dropped, the remainder sorted ascending.
	require.Len(t, series, 2)
	assert.True(t, series.Sorted())
	assert.Equal(t, "912797GD6", series[0].CUSIP)
	assert.Equal(t, 99.578, series[0].PricePer100)
	assert.Equal(t, "912797GF1", series[1].CUSIP)
	assert.Equal(t, 2.64, series[1].BidToCover)
}

func TestFetchBillAuctionsHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "2022-01-01", zerolog.Nop())

	_, err := client.FetchBillAuctions(domain.Term8Week)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchBillAuctionsUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // Connection refused from here on.

	client := NewClient(ts.URL, "2022-01-01", zerolog.Nop())

	_, err := client.FetchBillAuctions(domain.Term8Week)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchBillAuctionsMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "2022-01-01", zerolog.Nop())

	_, err := client.FetchBillAuctions(domain.Term13Week)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestTransformRejectsBadValues(t *testing.T) {
	_, err := transform([]auctionRecord{{
		IssueDate:   "not-a-date",
		CUSIP:       "X",
		PricePer100: "99.5",
		BidToCover:  "2.5",
	}})
	assert.ErrorIs(t, err, ErrTransform)

	_, err = transform([]auctionRecord{{
		IssueDate:   "2024-01-02",
		CUSIP:       "X",
		PricePer100: "ninety-nine",
		BidToCover:  "2.5",
	}})
	assert.ErrorIs(t, err, ErrTransform)
}

func TestTransformSortsAscending(t *testing.T) {
	series, err := transform([]auctionRecord{
		{IssueDate: "2024-02-06", CUSIP: "B", PricePer100: "99.6", BidToCover: "2.7"},
		{IssueDate: "2024-01-02", CUSIP: "A", PricePer100: "99.5", BidToCover: "2.6"},
		{IssueDate: "2024-03-05", CUSIP: "C", PricePer100: "99.7", BidToCover: "2.8"},
	})
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.True(t, series.Sorted())
	assert.Equal(t, "A", series[0].CUSIP)
	assert.Equal(t, "C", series[2].CUSIP)
}
