package attendance

import (
	"time"

	attendanceerrors "go-hrms/internal/attendance/errors"
)

// State is the derived clock state for a user. It is never persisted; it is a
// pure function of the user's most recent ledger event.
type State struct {
	Status       string
	LastEvent    *PunchEvent
	SessionStart *time.Time
}

// DeriveState computes the current state from the most recent event. A nil
// event means the user has never punched and is OUT.
func DeriveState(last *PunchEvent) State {
	if last == nil || last.PunchType != PunchIn {
		return State{Status: PunchOut, LastEvent: last}
	}
	start := last.PunchedAt
	return State{Status: PunchIn, LastEvent: last, SessionStart: &start}
}

// LiveElapsed returns the open session's elapsed time at the given instant.
// Zero while OUT; after an OUT punch the worked time is only recoverable
// through the day record for that date.
func (s State) LiveElapsed(now time.Time) time.Duration {
	if s.Status != PunchIn || s.SessionStart == nil {
		return 0
	}
	d := now.Sub(*s.SessionStart)
	if d < 0 {
		return 0
	}
	return d
}

// CanPunch validates the requested transition. IN is legal only from OUT and
// OUT only from IN; a same-type punch is rejected so duplicate events never
// reach the ledger.
func (s State) CanPunch(punchType string) error {
	switch punchType {
	case PunchIn:
		if s.Status == PunchIn {
			return attendanceerrors.ErrAlreadyPunchedIn
		}
	case PunchOut:
		if s.Status == PunchOut {
			return attendanceerrors.ErrAlreadyPunchedOut
		}
	default:
		return attendanceerrors.ErrInvalidPunchType
	}
	return nil
}
