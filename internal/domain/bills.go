// Package domain contains the core types shared across the application.
package domain

import "time"

// TermLength identifies one of the five Treasury Bill term buckets.
// The string values match the Treasury FiscalData API's security_term
// filter values and double as the cache primary key.
type TermLength string

const (
	Term4Week  TermLength = "4-Week"
	Term8Week  TermLength = "8-Week"
	Term13Week TermLength = "13-Week"
	Term26Week TermLength = "26-Week"
	Term52Week TermLength = "52-Week"
)

// AllTermLengths returns the five term lengths in ascending duration order.
func AllTermLengths() []TermLength {
	return []TermLength{Term4Week, Term8Week, Term13Week, Term26Week, Term52Week}
}

// Valid reports whether t is one of the five known term lengths.
func (t TermLength) Valid() bool {
	switch t {
	case Term4Week, Term8Week, Term13Week, Term26Week, Term52Week:
		return true
	}
	return false
}

// AuctionPoint is a single Treasury Bill auction result.
// PricePer100 is the discounted price per $100 face value.
type AuctionPoint struct {
	IssueDate   time.Time `msgpack:"issue_date"`
	CUSIP       string    `msgpack:"cusip"`
	PricePer100 float64   `msgpack:"price_per100"`
	BidToCover  float64   `msgpack:"bid_to_cover_ratio"`
}

// TimeSeries is an ordered sequence of auction points for one term length,
// sorted ascending by issue date (non-decreasing dates).
type TimeSeries []AuctionPoint

// Sorted reports whether the series satisfies the ascending issue-date
// invariant.
func (s TimeSeries) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].IssueDate.Before(s[i-1].IssueDate) {
			return false
		}
	}
	return true
}
