package research

import (
	"context"
	"time"
)

// Source fetches data for one keyword from one external provider.
type Source interface {
	// ID returns the registry identifier for this source.
	ID() string
	// Validate reports whether the query carries everything this source
	// needs. A non-nil error means the fetch must not be attempted.
	Validate(q Query) error
	// Fetch retrieves the source's artifacts for the query.
	Fetch(ctx context.Context, q Query) ([]Artifact, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Mailer delivers a digest over some transport.
type Mailer interface {
	Deliver(ctx context.Context, subject, body string, attachments []string) error
}
