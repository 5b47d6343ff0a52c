package domain

// Immutable reference data: a destination reachable from the home base.
// Distance is the one-way distance in kilometers.
type Destination struct {
	DestinationID string
	Name          string
	Distance      int
}
