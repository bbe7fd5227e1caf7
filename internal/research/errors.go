package research

import "errors"

// Error taxonomy. Callers match with errors.Is; sites wrap with
// fmt.Errorf("...: %w", Err...) to attach detail.
var (
	// ErrConfiguration marks an invalid request: unknown source id, or
	// recurring mode without its required parameters. Fatal to the
	// requested operation, reported immediately.
	ErrConfiguration = errors.New("configuration error")

	// ErrSource marks a single source fetch failure. Recovered locally:
	// captured in the run's source statuses, never fatal to the run.
	ErrSource = errors.New("source error")

	// ErrStorage marks a report directory or file write failure. Fatal to
	// the current run only.
	ErrStorage = errors.New("storage error")

	// ErrDelivery marks a digest transport failure. Logged after the
	// tick; already-persisted artifacts are kept, no retry within the tick.
	ErrDelivery = errors.New("delivery error")
)

// ErrMissingParameter is the reason recorded for a source that requires a
// parameter the caller did not supply. The source is not invoked.
var ErrMissingParameter = errors.New("missing parameter")
