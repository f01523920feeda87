package snapshot

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors
var (
	ErrEmptyCommunity         = errors.New("community has no members")
	ErrOverlappingCommunities = errors.New("vertex assigned to more than one community")
	ErrUnknownVertex          = errors.New("community member is not a snapshot vertex")
	ErrDateOrder              = errors.New("snapshot dates must be strictly increasing")
	ErrSnapshotNotFound       = errors.New("snapshot not found")
)

// SequenceGapError reports two snapshots that were expected to be one
// period apart but are not, or a consecutive pair with no matching.
type SequenceGapError struct {
	Prev   time.Time
	Next   time.Time
	Period Period
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("sequence gap: %s and %s are not consecutive (period %s)",
		e.Prev.Format(DateLayout), e.Next.Format(DateLayout), e.Period)
}

// SnapshotError carries the date of the snapshot that failed validation.
type SnapshotError struct {
	Date  time.Time
	Cause error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Date.Format(DateLayout), e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SnapshotError) Unwrap() error {
	return e.Cause
}
