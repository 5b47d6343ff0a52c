package domain

// Immutable reference data: a vehicle class with a finite stock.
// Range is the total operating range in kilometers; TotalStock is the number
// of units that may be committed across all active sessions combined.
type VehicleClass struct {
	VehicleID  string
	Type       string
	Range      int
	TotalStock int
}

// Whether the vehicle can cover the full round trip to a destination.
func (v *VehicleClass) CanRoundTrip(distance int) bool {
	return v.Range >= 2*distance
}
