package core

import (
	"math"
	"testing"
)

func TestNewRay_Defaults(t *testing.T) {
	r := NewRay(Vec3{Y: MarsRadius + 2}, 5e6)
	if r.PreviousRefractiveIndex != 1 {
		t.Errorf("PreviousRefractiveIndex = %g, want 1", r.PreviousRefractiveIndex)
	}
	if r.LastHit() != -1 {
		t.Errorf("LastHit = %d, want -1", r.LastHit())
	}
	if r.SignalPower != 0 || r.TimeOfFlight != 0 {
		t.Errorf("fresh ray should carry no loss or delay")
	}
	if !almostEqual(r.Altitude(MarsRadius), 2, 1e-6) {
		t.Errorf("Altitude = %g, want 2", r.Altitude(MarsRadius))
	}
	if !almostEqual(r.AngularFrequency(), 2*math.Pi*5e6, 1e-6) {
		t.Errorf("AngularFrequency = %g", r.AngularFrequency())
	}
}

func TestRay_SetAngle(t *testing.T) {
	r := NewRay(Vec3{}, 1e6)

	r.SetAngle(math.Pi / 2)
	assertUnit(t, r.Direction)
	if !almostEqual(r.Direction.Y, 1, 1e-12) || r.PreviousAngle != math.Pi/2 {
		t.Errorf("SetAngle(π/2) direction = %+v", r.Direction)
	}

	r.SetNormalAngle(math.Pi / 6)
	assertUnit(t, r.Direction)
	if !almostEqual(r.Direction.X, 0.5, 1e-12) || r.Direction.Y <= 0 {
		t.Errorf("SetNormalAngle(30°) direction = %+v, want (0.5, 0.866)", r.Direction)
	}
}

func TestRay_SnapshotNumbersSteps(t *testing.T) {
	r := NewRay(Vec3{X: 1, Y: 2}, 3e6)
	r.RayNumber = 7
	r.BeaconID = 2

	first := r.snapshot()
	second := r.snapshot()
	if first.Step != 1 || second.Step != 2 {
		t.Fatalf("steps = %d, %d; want 1, 2", first.Step, second.Step)
	}
	if first.RayNumber != 7 || first.BeaconID != 2 || first.Frequency != 3e6 || first.Y != 2 {
		t.Fatalf("snapshot = %+v", first)
	}
}
