package form

import "errors"

// State is the lifecycle of one form instance:
// idle -> loading -> ready -> submitting -> ready.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady  = errors.New("form is not ready")
	ErrNoProfile = errors.New("no profile loaded")
	ErrNotDirty  = errors.New("nothing to save")
)
