package convert

import (
	"fmt"

	"github.com/google/uuid"
)

// State tracks where a single conversion request is in its lifecycle. It
// exists for logging/diagnostics; it has no effect on control flow.
type State int

const (
	Idle State = iota
	Validating
	ProbingMetadata
	Invoking
	Verifying
	Streaming
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Validating:
		return "VALIDATING"
	case ProbingMetadata:
		return "PROBING_METADATA"
	case Invoking:
		return "INVOKING"
	case Verifying:
		return "VERIFYING"
	case Streaming:
		return "STREAMING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// IsTerminal is true for the states no further transition can leave.
func (s State) IsTerminal() bool { return s == Completed || s == Failed }

// tracker logs the state transitions for one request. Requests are
// identified by a random ID so that user-supplied URLs never reach
// the logs.
type tracker struct {
	id    uuid.UUID
	state State
}

func newTracker() *tracker {
	return &tracker{id: uuid.New(), state: Idle}
}

func (t *tracker) transition(to State) {
	if t.state.IsTerminal() {
		log.Warnf("Conversion %s attempted transition %s -> %s from terminal state\n", t.id, t.state, to)
		return
	}

	log.Verbosef("Conversion %s: %s -> %s\n", t.id, t.state, to)
	t.state = to
}
