package domain

import "testing"

func TestVehicleCanRoundTrip(t *testing.T) {
	bike := &VehicleClass{VehicleID: "bike", Type: "EV Bike", Range: 60, TotalStock: 2}

	if !bike.CanRoundTrip(30) {
		t.Errorf("range 60 should cover a 30km round trip exactly")
	}
	if !bike.CanRoundTrip(20) {
		t.Errorf("range 60 should cover a 20km round trip")
	}
	if bike.CanRoundTrip(31) {
		t.Errorf("range 60 should not cover a 31km round trip")
	}
}
