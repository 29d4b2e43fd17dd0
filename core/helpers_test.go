package core

import (
	"math"
	"sync"
	"testing"

	"github.com/signalsfoundry/ionotracer/model"
)

// recordingSink is a minimal ResultSink for tests.
type recordingSink struct {
	mu       sync.Mutex
	samples  []model.Sample
	tracings int
}

func (s *recordingSink) AddSample(sample model.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *recordingSink) IncrementTracings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracings++
	return s.tracings
}

func (s *recordingSink) Tracings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracings
}

func (s *recordingSink) byRay() map[int][]model.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int][]model.Sample)
	for _, sample := range s.samples {
		out[sample.RayNumber] = append(out[sample.RayNumber], sample)
	}
	return out
}

func testPlanet() *Planet {
	p := DefaultPlanet()
	return &p
}

// flatSegment is a horizontal mesh element centred over the +y pole.
func flatSegment(planet *Planet, altitude, halfWidth float64) Plane {
	y := planet.Radius + altitude
	return NewPlane(Vec3{X: -halfWidth, Y: y}, Vec3{X: halfWidth, Y: y})
}

// densityForIndex returns the electron density at which a Kelso layer has
// refractive index n for a wave of frequency f.
func densityForIndex(n, f float64) float64 {
	omega := 2 * math.Pi * f
	return (1 - n*n) * omega * omega * ElectronMass * PermittivityVacuum /
		(ElementaryCharge * ElementaryCharge)
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func relEqual(a, b, rel float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale <= rel
}

func assertUnit(t *testing.T, v Vec3) {
	t.Helper()
	if n := v.Norm(); !almostEqual(n, 1, 1e-12) {
		t.Fatalf("|%+v| = %.15f, want 1", v, n)
	}
}
