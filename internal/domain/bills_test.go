package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllTermLengthsOrderAndCount(t *testing.T) {
	terms := AllTermLengths()
	assert.Len(t, terms, 5)
	assert.Equal(t, Term4Week, terms[0])
	assert.Equal(t, Term52Week, terms[4])
}

func TestTermLengthValid(t *testing.T) {
	for _, term := range AllTermLengths() {
		assert.True(t, term.Valid(), "%s", term)
	}
	assert.False(t, TermLength("6-Month").Valid())
	assert.False(t, TermLength("").Valid())
}

func TestTimeSeriesSorted(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
	}

	sorted := TimeSeries{
		{IssueDate: day(1)},
		{IssueDate: day(1)}, // equal dates allowed
		{IssueDate: day(8)},
	}
	assert.True(t, sorted.Sorted())

	unsorted := TimeSeries{
		{IssueDate: day(8)},
		{IssueDate: day(1)},
	}
	assert.False(t, unsorted.Sorted())

	assert.True(t, TimeSeries{}.Sorted())
}
