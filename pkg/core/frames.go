package core

import (
	"github.com/oklog/ulid/v2"

	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/model"
)

// MatchMode tells how frames uploaded by an interrupted run are recognized when resuming
type MatchMode uint8

const (
	// MatchAuto matches frames by identifier when the caller provides them, and by timestamp otherwise
	MatchAuto MatchMode = iota

	// MatchByFrameID matches frames by identifier only. Frames must carry an identifier.
	MatchByFrameID

	// MatchByTimestamp matches frames by the timestamp of their data, or by the remote paths
	// of their sensor data when they have no timestamp.
	// A frame partially uploaded keeps the identifier it was first given.
	MatchByTimestamp
)

// ParseMatchMode reads a match mode from its name
func ParseMatchMode(name string) (MatchMode, error) {
	for _, m := range []MatchMode{MatchAuto, MatchByFrameID, MatchByTimestamp} {
		if m.String() == name {
			return m, nil
		}
	}
	return MatchAuto, status.ErrInvalidParams.WrapMessage("unknown match mode %q: expected auto, frame-id or timestamp", name)
}

func (m MatchMode) String() string {
	switch m {
	case MatchByFrameID:
		return "frame-id"
	case MatchByTimestamp:
		return "timestamp"
	default:
		return "auto"
	}
}

// checkFrameIDs verifies that either every frame carries an identifier, or none does.
// It reports whether identifiers are explicit.
func checkFrameIDs(frames []*model.Frame) (bool, error) {
	if len(frames) == 0 {
		return false, nil
	}
	explicit := frames[0] != nil && frames[0].ID != nil
	for i, frame := range frames {
		if frame == nil || len(frame.Items) == 0 {
			return false, status.ErrFrame.WrapMessage("frame %d has no data", i)
		}
		if (frame.ID != nil) != explicit {
			return false, status.ErrFrame.WrapMessage("frame %d: either all frames carry an id, or none does", i)
		}
	}
	if !explicit {
		return false, nil
	}
	seen := make(map[ulid.ULID]int, len(frames))
	for i, frame := range frames {
		if j, dup := seen[*frame.ID]; dup {
			return false, status.ErrFrame.WrapMessage("frames %d and %d share the id %s", j, i, frame.ID)
		}
		seen[*frame.ID] = i
	}
	return true, nil
}

// synthesizeFrameIDs returns n strictly increasing identifiers, sorting after both the current time and after
func synthesizeFrameIDs(n int, after ulid.ULID) []ulid.ULID {
	seed := ulid.Make()
	if seed.Compare(after) <= 0 {
		seed = nextID(after)
	}
	ids := make([]ulid.ULID, n)
	id := seed
	for i := range ids {
		ids[i] = id
		id = nextID(id)
	}
	return ids
}

// nextID increments an identifier as a 128-bit big endian integer
func nextID(id ulid.ULID) ulid.ULID {
	next := id
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}
