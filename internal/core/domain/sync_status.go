package domain

import (
	"bytes"
	"encoding/json"
)

// SyncStatus is a single eth_syncing observation.
// The zero value is an idle node (the RPC answered false).
type SyncStatus struct {
	Syncing      bool
	CurrentBlock uint64
	PulledStates *uint64 // nil when the node does not report state progress

	// Raw is the result object exactly as the node returned it.
	Raw json.RawMessage
}

// Idle returns the status of a node with no sync in progress.
func Idle() SyncStatus {
	return SyncStatus{}
}

// IsIdle reports whether the node said no sync is in progress.
func (s SyncStatus) IsIdle() bool {
	return !s.Syncing
}

// Payload renders the status for a health-check response body.
func (s SyncStatus) Payload() string {
	if s.IsIdle() {
		return "false"
	}
	if len(s.Raw) == 0 {
		return "true"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, s.Raw, "", "  "); err != nil {
		return string(s.Raw)
	}
	return buf.String()
}
