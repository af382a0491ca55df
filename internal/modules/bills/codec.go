// Package bills implements the local cache for Treasury Bill auction
// series: a msgpack payload codec, a SQLite-backed store with content-hash
// integrity verification, and a manager that resolves all five term lengths
// either from cache or by a full batch refresh.
package bills

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/aristath/tbills/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNonFiniteValue is returned by Encode when a series contains a NaN or
// infinite rate that cannot be persisted.
var ErrNonFiniteValue = errors.New("series contains a non-finite value")

// Encode serializes a time series to msgpack bytes.
// The encoding is deterministic: Decode(Encode(x)) reconstructs x.
func Encode(series domain.TimeSeries) ([]byte, error) {
	for i, p := range series {
		if !isFinite(p.PricePer100) || !isFinite(p.BidToCover) {
			return nil, fmt.Errorf("point %d (%s): %w", i, p.CUSIP, ErrNonFiniteValue)
		}
	}

	blob, err := msgpack.Marshal(series)
	if err != nil {
		return nil, fmt.Errorf("failed to encode series: %w", err)
	}

	return blob, nil
}

// Decode reconstructs a time series from msgpack bytes.
// A decode failure means the blob is structurally malformed; integrity
// (bit-level corruption) is the store's concern, checked via Digest.
func Decode(blob []byte) (domain.TimeSeries, error) {
	var series domain.TimeSeries
	if err := msgpack.Unmarshal(blob, &series); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}
	return series, nil
}

// Digest returns the hex-encoded SHA-256 of the exact bytes passed in.
// Stable across runs and platforms for the same byte sequence.
func Digest(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
