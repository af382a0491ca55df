// Package fiscaldata provides a client for the US Treasury FiscalData API,
// fetching Treasury Bill auction results per term length.
package fiscaldata

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/aristath/tbills/internal/domain"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service"

// ErrFetch indicates a network or HTTP-level failure talking to the API.
var ErrFetch = errors.New("fiscaldata fetch failed")

// ErrTransform indicates the API responded but with an unexpected shape.
var ErrTransform = errors.New("fiscaldata response malformed")

// Client for the Treasury FiscalData auctions_query endpoint.
type Client struct {
	baseURL     string
	issuedSince string
	client      *http.Client
	log         zerolog.Logger
}

// NewClient creates a new FiscalData client. baseURL may be empty to use the
// public API; issuedSince (YYYY-MM-DD) bounds how far back auctions are
// requested.
func NewClient(baseURL, issuedSince string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		issuedSince: issuedSince,
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         log.With().Str("client", "fiscaldata").Logger(),
	}
}

// auctionRecord mirrors the API's row shape. All fields arrive as strings;
// missing numerics are the literal string "null".
type auctionRecord struct {
	IssueDate    string `json:"issue_date"`
	CUSIP        string `json:"cusip"`
	SecurityTerm string `json:"security_term"`
	PricePer100  string `json:"price_per100"`
	BidToCover   string `json:"bid_to_cover_ratio"`
}

// FetchBillAuctions fetches and transforms the auction series for one term
// length. Rows with "null" numeric fields are dropped; the rest are parsed
// and sorted ascending by issue date.
func (c *Client) FetchBillAuctions(term domain.TermLength) (domain.TimeSeries, error) {
	endpoint := c.baseURL + "/v1/accounting/od/auctions_query"

	params := url.Values{}
	params.Set("filter", fmt.Sprintf(
		"security_term:eq:%s,security_type:eq:Bill,issue_date:gte:%s",
		term, c.issuedSince,
	))
	params.Set("sort", "-issue_date")

	reqURL := endpoint + "?" + params.Encode()
	c.log.Debug().Str("term", string(term)).Str("url", reqURL).Msg("Fetching auctions")

	resp, err := c.client.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	var payload struct {
		Data []auctionRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}

	series, err := transform(payload.Data)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("term", string(term)).
		Int("rows", len(payload.Data)).
		Int("points", len(series)).
		Msg("Fetched auction series")

	return series, nil
}

// transform parses raw records into a sorted time series. Rows whose
// numeric fields are "null" carry no plottable rate and are skipped.
func transform(records []auctionRecord) (domain.TimeSeries, error) {
	series := make(domain.TimeSeries, 0, len(records))

	for _, rec := range records {
		if rec.PricePer100 == "null" || rec.BidToCover == "null" {
			continue
		}

		issueDate, err := time.Parse("2006-01-02", rec.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: bad issue_date %q", ErrTransform, rec.IssueDate)
		}

		price, err := strconv.ParseFloat(rec.PricePer100, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad price_per100 %q", ErrTransform, rec.PricePer100)
		}

		bidToCover, err := strconv.ParseFloat(rec.BidToCover, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad bid_to_cover_ratio %q", ErrTransform, rec.BidToCover)
		}

		series = append(series, domain.AuctionPoint{
			IssueDate:   issueDate,
			CUSIP:       rec.CUSIP,
			PricePer100: price,
			BidToCover:  bidToCover,
		})
	}

	// API returns newest first; charts want ascending issue dates.
	sort.Slice(series, func(i, j int) bool {
		return series[i].IssueDate.Before(series[j].IssueDate)
	})

	return series, nil
}
