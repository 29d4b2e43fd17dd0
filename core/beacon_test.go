package core

import (
	"errors"
	"math"
	"testing"
)

func TestSweep_Values(t *testing.T) {
	cases := []struct {
		name  string
		sweep Sweep
		want  []float64
	}{
		{"single", Sweep{Start: 5e6, Stop: 5e6}, []float64{5e6}},
		{"inclusive stop", Sweep{Start: 0, Stop: 80, Step: 20}, []float64{0, 20, 40, 60, 80}},
		{"rounding", Sweep{Start: 0, Stop: 0.3, Step: 0.1}, []float64{0, 0.1, 0.2, 0.3}},
		{"stop not on grid", Sweep{Start: 1, Stop: 2.5, Step: 1}, []float64{1, 2}},
	}
	for _, tc := range cases {
		got, err := tc.sweep.Values()
		if err != nil {
			t.Fatalf("%s: Values error: %v", tc.name, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if !almostEqual(got[i], tc.want[i], 1e-9) {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestSweep_Invalid(t *testing.T) {
	for _, s := range []Sweep{
		{Start: 0, Stop: 10, Step: 0},
		{Start: 0, Stop: 10, Step: -1},
		{Start: 10, Stop: 0, Step: 1},
	} {
		if _, err := s.Values(); !errors.Is(err, ErrEmptySweep) {
			t.Fatalf("%+v: expected ErrEmptySweep, got %v", s, err)
		}
	}
}

func TestLaunchGrid_FrequencyMajorNumbering(t *testing.T) {
	planet := DefaultPlanet()
	grid := LaunchGrid{
		BeaconID:    4,
		Altitude:    2,
		Frequencies: Sweep{Start: 3e6, Stop: 4e6, Step: 1e6},
		Angles:      Sweep{Start: 0, Stop: 60, Step: 30},
	}
	launches, err := grid.Launches(planet)
	if err != nil {
		t.Fatalf("Launches error: %v", err)
	}
	if len(launches) != 6 {
		t.Fatalf("launches = %d, want 6", len(launches))
	}
	for i, l := range launches {
		if l.RayNumber != i+1 {
			t.Fatalf("launch %d has ray number %d", i, l.RayNumber)
		}
		if l.BeaconID != 4 || l.Origin != (Vec3{Y: planet.Radius + 2}) {
			t.Fatalf("launch %d = %+v", i, l)
		}
	}
	if launches[2].Frequency != 3e6 || launches[3].Frequency != 4e6 {
		t.Fatalf("expected frequency-major ordering, got %+v", launches)
	}
	if !almostEqual(launches[1].Angle, math.Pi/6, 1e-12) {
		t.Fatalf("angle not converted to radians: %g", launches[1].Angle)
	}

	r := launches[1].NewRay()
	assertUnit(t, r.Direction)
	if r.RayNumber != 2 || r.OriginalAngle != launches[1].Angle || !almostEqual(r.Direction.X, 0.5, 1e-12) {
		t.Fatalf("NewRay = %+v", r)
	}
}

func TestLaunchGrid_RejectsNonPositiveFrequency(t *testing.T) {
	grid := LaunchGrid{
		Frequencies: Sweep{Start: 0, Stop: 1e6, Step: 1e6},
		Angles:      Sweep{Start: 0, Stop: 0},
	}
	if _, err := grid.Launches(DefaultPlanet()); err == nil {
		t.Fatalf("expected error for 0 Hz launch")
	}
}
