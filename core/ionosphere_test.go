package core

import (
	"context"
	"math"
	"testing"
)

func newTestIonosphere(planet *Planet, altitude, density float64) *Ionosphere {
	io := NewIonosphere(flatSegment(planet, altitude, 5e3), 500, planet)
	io.electronNumberDensity = density
	io.peakElectronDensity = density
	return io
}

// TestIonosphere_ZeroDensityIsTransparent: with no plasma the layer has unit
// index and the ray passes undeflected and unattenuated.
func TestIonosphere_ZeroDensityIsTransparent(t *testing.T) {
	planet := testPlanet()
	io := newTestIonosphere(planet, 120e3, 0)

	r := NewRay(Vec3{Y: planet.Radius + 2}, 5e6)
	r.SetNormalAngle(20 * math.Pi / 180)
	before := r.Direction

	if io.PlasmaFrequency() != 0 {
		t.Fatalf("PlasmaFrequency = %g, want 0", io.PlasmaFrequency())
	}
	if n := io.RefractiveIndex(r); n != 1 {
		t.Fatalf("RefractiveIndex = %g, want 1", n)
	}

	sink := &recordingSink{}
	io.Interact(context.Background(), r, Vec3{X: 1, Y: planet.Radius + 120e3}, sink)

	if r.Behaviour != BehaviourRefracted {
		t.Fatalf("Behaviour = %s, want refracted", r.Behaviour)
	}
	if !almostEqual(r.Direction.X, before.X, 1e-12) || !almostEqual(r.Direction.Y, before.Y, 1e-12) {
		t.Fatalf("direction changed: %+v -> %+v", before, r.Direction)
	}
	if r.SignalPower != 0 {
		t.Fatalf("SignalPower = %g, want 0", r.SignalPower)
	}
	if r.RangeDelay != 0 || r.PhaseAdvance != 0 || r.TimeDelay != 0 {
		t.Fatalf("delays accumulated through an empty layer")
	}
	if len(sink.samples) != 1 || sink.samples[0].CollisionType != GeometryIonosphere {
		t.Fatalf("expected one ionosphere sample, got %#v", sink.samples)
	}
	if r.Origin != (Vec3{X: 1, Y: planet.Radius + 120e3}) {
		t.Fatalf("origin not moved to hit point: %+v", r.Origin)
	}
}

// TestIonosphere_CutoffReflects: a 5 MHz wave below the layer's plasma
// frequency is reflected.
func TestIonosphere_CutoffReflects(t *testing.T) {
	planet := testPlanet()
	io := newTestIonosphere(planet, 130e3, 1e12)

	r := NewRay(Vec3{Y: planet.Radius + 2}, 5e6)
	if io.PlasmaFrequency() <= 2*math.Pi*5e6 {
		t.Fatalf("test layer plasma frequency %g too low", io.PlasmaFrequency())
	}
	if got := io.DetermineWaveBehaviour(r); got != BehaviourReflected {
		t.Fatalf("DetermineWaveBehaviour = %s, want reflected", got)
	}

	io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 130e3}, nil)
	assertUnit(t, r.Direction)
	if !almostEqual(r.Direction.Y, -1, 1e-12) {
		t.Fatalf("vertical ray should come straight back, got %+v", r.Direction)
	}
	if r.PreviousRefractiveIndex != 1 {
		t.Fatalf("reflection must not change the carried index, got %g", r.PreviousRefractiveIndex)
	}
}

func TestIonosphere_RefractionFollowsSnell(t *testing.T) {
	planet := testPlanet()
	const f = 5e6
	io := newTestIonosphere(planet, 120e3, densityForIndex(0.8, f))

	r := NewRay(Vec3{Y: planet.Radius + 2}, f)
	r.SetNormalAngle(20 * math.Pi / 180)

	if got := io.DetermineWaveBehaviour(r); got != BehaviourRefracted {
		t.Fatalf("DetermineWaveBehaviour = %s, want refracted", got)
	}
	io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 120e3}, nil)

	assertUnit(t, r.Direction)
	wantSin := math.Sin(20*math.Pi/180) / 0.8
	if !almostEqual(r.Direction.X, wantSin, 1e-9) {
		t.Fatalf("sin θt = %g, want %g", r.Direction.X, wantSin)
	}
	if !almostEqual(r.PreviousRefractiveIndex, 0.8, 1e-9) {
		t.Fatalf("carried index = %g, want 0.8", r.PreviousRefractiveIndex)
	}
}

func TestIonosphere_TotalInternalReflection(t *testing.T) {
	planet := testPlanet()
	const f = 5e6
	io := newTestIonosphere(planet, 120e3, densityForIndex(0.8, f))

	r := NewRay(Vec3{Y: planet.Radius + 2}, f)
	r.SetNormalAngle(60 * math.Pi / 180)

	if got := io.DetermineWaveBehaviour(r); got != BehaviourReflected {
		t.Fatalf("60° past a 53° critical angle: got %s, want reflected", got)
	}
	io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 120e3}, nil)
	assertUnit(t, r.Direction)
	if r.Direction.Y >= 0 || !almostEqual(r.Direction.X, math.Sin(60*math.Pi/180), 1e-12) {
		t.Fatalf("mirror reflection expected, got %+v", r.Direction)
	}
}

func TestIonosphere_DescendingRefractionStaysUnit(t *testing.T) {
	planet := testPlanet()
	const f = 8e6
	io := newTestIonosphere(planet, 120e3, densityForIndex(0.95, f))

	r := NewRay(Vec3{Y: planet.Radius + 150e3}, f)
	r.PreviousRefractiveIndex = 0.9
	r.Direction = Vec3{X: 0.3, Y: -1}.Normalize()

	io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 120e3}, nil)
	if r.Behaviour != BehaviourRefracted {
		t.Fatalf("Behaviour = %s, want refracted", r.Behaviour)
	}
	assertUnit(t, r.Direction)
	if r.Direction.Y >= 0 {
		t.Fatalf("descending ray turned upwards: %+v", r.Direction)
	}
}

func TestIonosphere_SignalPowerNonIncreasing(t *testing.T) {
	planet := testPlanet()
	io := newTestIonosphere(planet, 80e3, 1e11)

	r := NewRay(Vec3{Y: planet.Radius + 2}, 9e6)
	prev := r.SignalPower
	for i := 0; i < 5; i++ {
		r.PreviousRefractiveIndex = 1
		r.SetNormalAngle(10 * math.Pi / 180)
		io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 80e3}, nil)
		if r.SignalPower > prev {
			t.Fatalf("interaction %d raised signal power %g -> %g", i, prev, r.SignalPower)
		}
		prev = r.SignalPower
	}
	if r.SignalPower >= 0 {
		t.Fatalf("expected collisional loss, SignalPower = %g", r.SignalPower)
	}
}

func TestIonosphere_TECAndDelays(t *testing.T) {
	planet := testPlanet()
	io := newTestIonosphere(planet, 120e3, 2e10)

	if got := io.TEC(); got != 2e10*500 {
		t.Fatalf("TEC = %g, want %g", got, 2e10*500.0)
	}

	const f = 9e6
	r := NewRay(Vec3{Y: planet.Radius + 2}, f)
	io.Interact(context.Background(), r, Vec3{Y: planet.Radius + 120e3}, nil)

	tec := io.TEC()
	if !relEqual(r.RangeDelay, 0.403*tec/(f*f), 1e-12) {
		t.Errorf("RangeDelay = %g", r.RangeDelay)
	}
	if !relEqual(r.PhaseAdvance, 8.44e-7/f*tec, 1e-12) {
		t.Errorf("PhaseAdvance = %g", r.PhaseAdvance)
	}
	if !relEqual(r.TimeDelay, 1.34e-7/(f*f)*tec, 1e-12) {
		t.Errorf("TimeDelay = %g", r.TimeDelay)
	}
}

func TestIonosphere_CollisionFrequencyDecaysWithAltitude(t *testing.T) {
	planet := testPlanet()
	low := newTestIonosphere(planet, 80e3, 0)
	high := newTestIonosphere(planet, 160e3, 0)

	if low.CollisionFrequency() <= high.CollisionFrequency() {
		t.Fatalf("ν(80 km)=%g should exceed ν(160 km)=%g", low.CollisionFrequency(), high.CollisionFrequency())
	}
	want := 1.0436e-7 * planet.SurfaceNCO2 * math.Exp(-80e3/planet.NeutralScaleHeight)
	if !relEqual(low.CollisionFrequency(), want, 1e-9) {
		t.Fatalf("ν(80 km) = %g, want %g", low.CollisionFrequency(), want)
	}
}

// TestIonosphere_SuperpositionTracksPeak: two profiles on one layer sum their
// Chapman contributions and keep the larger peak.
func TestIonosphere_SuperpositionTracksPeak(t *testing.T) {
	planet := testPlanet()
	io := NewIonosphere(flatSegment(planet, 120e3, 5e3), 500, planet)

	p1 := ChapmanProfile{Name: "a", PeakDensity: 1e10, PeakAltitude: 135e3}
	p2 := ChapmanProfile{Name: "b", PeakDensity: 5e9, PeakAltitude: 110e3}
	io.SuperimposeElectronDensity(p1)
	io.SuperimposeElectronDensity(p2)

	if io.PeakElectronDensity() != 1e10 {
		t.Fatalf("PeakElectronDensity = %g, want 1e10", io.PeakElectronDensity())
	}
	sza := planet.SolarZenithAngle(io.Mesh().Normal)
	want := ChapmanDensity(p1, io.Altitude(), planet.NeutralScaleHeight, sza) +
		ChapmanDensity(p2, io.Altitude(), planet.NeutralScaleHeight, sza)
	if !relEqual(io.ElectronNumberDensity(), want, 1e-12) {
		t.Fatalf("density = %g, want %g", io.ElectronNumberDensity(), want)
	}
	if io.PeakPlasmaFrequency() != PlasmaFrequency(1e10) {
		t.Fatalf("PeakPlasmaFrequency = %g", io.PeakPlasmaFrequency())
	}
}

func TestIonosphere_SuperpositionOrderIndependent(t *testing.T) {
	planet := testPlanet()
	profiles := []ChapmanProfile{
		{PeakDensity: 1e11, PeakAltitude: 135e3},
		{PeakDensity: 4e10, PeakAltitude: 110e3},
		{PeakDensity: 7e9, PeakAltitude: 160e3, NeutralScaleHeight: 20e3},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {1, 2, 0}}

	var first *Ionosphere
	for _, order := range orders {
		io := NewIonosphere(flatSegment(planet, 125e3, 5e3), 500, planet)
		for _, i := range order {
			io.SuperimposeElectronDensity(profiles[i])
		}
		if first == nil {
			first = io
			continue
		}
		if !relEqual(io.ElectronNumberDensity(), first.ElectronNumberDensity(), 1e-12) {
			t.Fatalf("order %v density %g != %g", order, io.ElectronNumberDensity(), first.ElectronNumberDensity())
		}
		if io.PeakElectronDensity() != first.PeakElectronDensity() {
			t.Fatalf("order %v peak %g != %g", order, io.PeakElectronDensity(), first.PeakElectronDensity())
		}
	}
}

func TestChapmanDensity(t *testing.T) {
	p := ChapmanProfile{PeakDensity: 1e11, PeakAltitude: 135e3}

	if got := ChapmanDensity(p, 135e3, NeutralScaleHeight, 0); !relEqual(got, 1e11, 1e-12) {
		t.Errorf("density at peak, overhead sun = %g, want 1e11", got)
	}
	if got := ChapmanDensity(p, 135e3, NeutralScaleHeight, math.Pi); got != 0 {
		t.Errorf("night side density = %g, want 0", got)
	}
	if got := ChapmanDensity(p, 135e3, NeutralScaleHeight, math.Pi/2); got != 0 {
		t.Errorf("terminator density = %g, want 0", got)
	}
	if ChapmanDensity(p, 100e3, NeutralScaleHeight, 0) >= 1e11 {
		t.Errorf("density below the peak should be lower than the peak")
	}
	slanted := ChapmanDensity(p, 135e3, NeutralScaleHeight, math.Pi/3)
	if slanted >= 1e11 || slanted <= 0 {
		t.Errorf("density at 60° SZA = %g, want in (0, peak)", slanted)
	}
}

func TestIonosphere_NightSideGetsNoDensity(t *testing.T) {
	planet := testPlanet()
	planet.Subsolar = Vec3{Y: -1}
	io := NewIonosphere(flatSegment(planet, 135e3, 5e3), 500, planet)
	io.SuperimposeElectronDensity(ChapmanProfile{PeakDensity: 1e11, PeakAltitude: 135e3})

	if io.ElectronNumberDensity() != 0 {
		t.Fatalf("night side density = %g, want 0", io.ElectronNumberDensity())
	}
	if io.PeakElectronDensity() != 1e11 {
		t.Fatalf("peak should still be tracked, got %g", io.PeakElectronDensity())
	}
}

func TestIonosphere_AppletonHartreeIsTransparent(t *testing.T) {
	planet := testPlanet()
	io := newTestIonosphere(planet, 120e3, 1e11)
	io.Model = RefractionAppletonHartree

	if n := io.RefractiveIndex(NewRay(Vec3{}, 20e6)); n != 1 {
		t.Fatalf("unimplemented model index = %g, want 1", n)
	}
}
