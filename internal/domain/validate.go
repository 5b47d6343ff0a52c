package domain

// ValidateBatch checks a proposed allocation batch against the catalog and
// the current committed state. taken holds destination ids already committed
// to the same session; usage holds committed claim counts per vehicle id
// across all active sessions.
//
// Checks run fail-fast in a fixed order and return the first violation:
// reference validity, destination uniqueness, round-trip range, stock
// availability. Callers that need an authoritative answer must invoke this
// inside the same transaction that writes the claims, with taken and usage
// read under that transaction.
func ValidateBatch(
	claims []ClaimRequest,
	destinations map[string]*Destination,
	vehicles map[string]*VehicleClass,
	taken map[string]bool,
	usage map[string]int,
) error {
	if len(claims) == 0 {
		return ErrEmptyBatch
	}

	for _, c := range claims {
		if _, ok := destinations[c.DestinationID]; !ok {
			return &UnknownReferenceError{Kind: "destination", ID: c.DestinationID}
		}
		if _, ok := vehicles[c.VehicleID]; !ok {
			return &UnknownReferenceError{Kind: "vehicle", ID: c.VehicleID}
		}
	}

	seen := make(map[string]bool, len(claims))
	for _, c := range claims {
		if seen[c.DestinationID] || taken[c.DestinationID] {
			return &DuplicateDestinationError{DestinationID: c.DestinationID}
		}
		seen[c.DestinationID] = true
	}

	for _, c := range claims {
		dest := destinations[c.DestinationID]
		vehicle := vehicles[c.VehicleID]
		if !vehicle.CanRoundTrip(dest.Distance) {
			return &InsufficientRangeError{
				VehicleID:     c.VehicleID,
				DestinationID: c.DestinationID,
				Range:         vehicle.Range,
				Distance:      dest.Distance,
			}
		}
	}

	// Walk claims in order so the reported vehicle is deterministic when a
	// batch alone oversubscribes a class.
	running := make(map[string]int, len(claims))
	for _, c := range claims {
		running[c.VehicleID]++
		if usage[c.VehicleID]+running[c.VehicleID] > vehicles[c.VehicleID].TotalStock {
			return &VehicleUnavailableError{VehicleID: c.VehicleID}
		}
	}

	return nil
}
