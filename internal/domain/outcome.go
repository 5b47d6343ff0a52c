package domain

// A winning claim: the participant and the destination that matched.
type Winner struct {
	Participant   string
	DestinationID string
}

// Derived result of a session. Outcomes are computed at resolution time and
// never stored.
type Outcome struct {
	Captured bool
	Winners  []Winner
}

// ResolveOutcome compares committed claims against the hidden destination.
// Winners keeps its plural shape even though destination uniqueness makes
// more than one match impossible today.
func ResolveOutcome(hiddenDestinationID string, claims []*Claim) Outcome {
	winners := make([]Winner, 0, 1)
	for _, c := range claims {
		if c.DestinationID == hiddenDestinationID {
			winners = append(winners, Winner{
				Participant:   c.Participant,
				DestinationID: c.DestinationID,
			})
		}
	}

	return Outcome{Captured: len(winners) > 0, Winners: winners}
}
