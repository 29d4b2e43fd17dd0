package core

import (
	"math"

	"github.com/signalsfoundry/ionotracer/model"
)

// Behaviour aliases model.Behaviour so physics code can stay within core.
type Behaviour = model.Behaviour

const (
	BehaviourNone      = model.BehaviourNone
	BehaviourReflected = model.BehaviourReflected
	BehaviourRefracted = model.BehaviourRefracted
)

// Ray is the propagation state of one traced ray. A Ray is owned by exactly
// one Worker; geometries mutate it only through Interact.
type Ray struct {
	Origin    Vec3
	Direction Vec3

	Frequency   float64 // Hz
	SignalPower float64 // dB

	// PreviousRefractiveIndex is the index of the medium the ray currently
	// travels in, i.e. n1 at the next boundary.
	PreviousRefractiveIndex float64
	// PreviousAngle is the last propagation angle set on the ray.
	PreviousAngle float64

	RangeDelay   float64 // m
	PhaseAdvance float64 // rad
	TimeDelay    float64 // s
	TimeOfFlight float64 // s

	OriginalAngle   float64
	OriginalAzimuth float64
	RayNumber       int
	BeaconID        int

	Behaviour Behaviour
	Bounces   int

	// lastHit is the ID of the geometry interacted with most recently;
	// -1 before the first interaction.
	lastHit int
	steps   int
}

// NewRay returns a ray at origin with unit refractive index carried state and
// no previous interaction.
func NewRay(origin Vec3, frequency float64) *Ray {
	return &Ray{
		Origin:                  origin,
		Direction:               Vec3{Y: 1},
		Frequency:               frequency,
		PreviousRefractiveIndex: 1.0,
		lastHit:                 -1,
	}
}

// SetAngle points the ray at angle radians from the frame +x axis.
func (r *Ray) SetAngle(angle float64) {
	r.Direction = Vec3{X: math.Cos(angle), Y: math.Sin(angle)}
	r.PreviousAngle = angle
}

// SetNormalAngle points the ray at angle radians from the local vertical
// (+y) at the launch site, tilted towards +x.
func (r *Ray) SetNormalAngle(angle float64) {
	r.Direction = Vec3{X: math.Sin(angle), Y: math.Cos(angle)}
	r.PreviousAngle = angle
}

// Altitude returns the height of the ray above a sphere of the given radius.
func (r *Ray) Altitude(radius float64) float64 {
	return r.Origin.Norm() - radius
}

// AngularFrequency returns 2πf.
func (r *Ray) AngularFrequency() float64 {
	return 2 * math.Pi * r.Frequency
}

// LastHit returns the ID of the geometry the ray interacted with last, or -1.
func (r *Ray) LastHit() int {
	return r.lastHit
}

// snapshot captures the ray state common to every sample. Callers fill in
// the geometry-specific fields.
func (r *Ray) snapshot() model.Sample {
	r.steps++
	return model.Sample{
		RayNumber:       r.RayNumber,
		Step:            r.steps,
		X:               r.Origin.X,
		Y:               r.Origin.Y,
		Z:               r.Origin.Z,
		OriginalAngle:   r.OriginalAngle,
		OriginalAzimuth: r.OriginalAzimuth,
		Frequency:       r.Frequency,
		SignalPower:     r.SignalPower,
		RangeDelay:      r.RangeDelay,
		PhaseAdvance:    r.PhaseAdvance,
		TimeDelay:       r.TimeDelay,
		TimeOfFlight:    r.TimeOfFlight,
		Behaviour:       r.Behaviour,
		BeaconID:        r.BeaconID,
	}
}
