package health

import "github.com/vietddude/nodehealth/internal/core/domain"

// Progressed reports whether current shows forward sync progress over previous, the last
// distinct syncing status. An idle status never counts as progress; the first syncing
// status always does. Otherwise either currentBlock or, when both sides report it,
// pulledStates must have strictly increased.
func Progressed(current domain.SyncStatus, previous *domain.SyncStatus) bool {
	if current.IsIdle() {
		return false
	}
	if previous == nil {
		return true
	}

	if current.CurrentBlock > previous.CurrentBlock {
		return true
	}
	if current.PulledStates != nil && previous.PulledStates != nil {
		return *current.PulledStates > *previous.PulledStates
	}
	return false
}
