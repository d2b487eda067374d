package realtime

import (
	"cmp"
	"slices"

	"github.com/comalice/graphfsm"
)

// EventWithMeta adds sequencing metadata for deterministic ordering
type EventWithMeta struct {
	Event       graphfsm.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders events deterministically: higher priority first, then
// earlier sequence number first.
func sortEvents(events []EventWithMeta) {
	slices.SortStableFunc(events, func(a, b EventWithMeta) int {
		if a.Priority != b.Priority {
			return cmp.Compare(b.Priority, a.Priority)
		}
		return cmp.Compare(a.SequenceNum, b.SequenceNum)
	})
}
