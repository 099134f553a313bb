package domain

import (
	"strconv"
	"time"
)

// Verdict is the outcome of one health evaluation.
type Verdict struct {
	Healthy    bool
	Diagnostic string
	// Structured marks Diagnostic as a JSON document rather than plain text.
	Structured bool
}

// Healthy returns a plain-text healthy verdict.
func Healthy(diagnostic string) Verdict {
	return Verdict{Healthy: true, Diagnostic: diagnostic}
}

// Unhealthy returns a plain-text unhealthy verdict.
func Unhealthy(diagnostic string) Verdict {
	return Verdict{Healthy: false, Diagnostic: diagnostic}
}

// Failed turns an evaluation error into an unhealthy verdict.
func Failed(err error) Verdict {
	return Unhealthy(err.Error())
}

// BlockDifference renders the signed local-minus-network height difference.
func BlockDifference(local, network uint64) string {
	return strconv.FormatInt(int64(local)-int64(network), 10)
}

// CacheEntry is a network reference height remembered for a while.
type CacheEntry struct {
	Height    uint64
	FetchedAt time.Time
}

// CheckRecord is a journaled verdict.
type CheckRecord struct {
	ID         string
	Node       string
	Mode       string
	Healthy    bool
	Diagnostic string
	CheckedAt  time.Time
}
