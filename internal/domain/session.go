package domain

import "time"

// One independent game round. The hidden destination is picked at creation
// and read back only during resolution; resolving the session deletes this
// record together with all of its claims.
type Session struct {
	SessionID           string
	HiddenDestinationID string
	CreatedAt           time.Time
}
