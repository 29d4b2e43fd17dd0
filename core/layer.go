package core

import (
	"context"
	"math"

	"github.com/signalsfoundry/ionotracer/internal/logging"
	"github.com/signalsfoundry/ionotracer/model"
)

// GeometryType aliases model.GeometryType for the geometry variants.
type GeometryType = model.GeometryType

const (
	GeometryNone       = model.GeometryNone
	GeometryIonosphere = model.GeometryIonosphere
	GeometryAtmosphere = model.GeometryAtmosphere
	GeometryTerrain    = model.GeometryTerrain
)

// SampleSink receives samples emitted during tracing. Implementations must
// be safe for concurrent use; every worker shares one sink.
type SampleSink interface {
	AddSample(model.Sample)
}

// Geometry is a scene element a ray can interact with. The tracing driver
// only ever talks to geometries through this interface.
type Geometry interface {
	Type() GeometryType
	Mesh() Plane
	// Interact applies the layer physics to r at hit, moves r to hit and
	// emits one sample to sink when sink is non-nil.
	Interact(ctx context.Context, r *Ray, hit Vec3, sink SampleSink)
}

// Planet holds the body-wide parameters every layer reads. A single value
// is shared by the whole scene and never mutated after construction.
type Planet struct {
	Radius             float64 // m
	SurfaceNCO2        float64 // m^-3
	NeutralScaleHeight float64 // m
	// Subsolar is the unit vector from the planet centre to the sub-solar
	// point.
	Subsolar Vec3
}

// DefaultPlanet returns Mars with the sun overhead at +y.
func DefaultPlanet() Planet {
	return Planet{
		Radius:             MarsRadius,
		SurfaceNCO2:        MarsSurfaceNCO2,
		NeutralScaleHeight: NeutralScaleHeight,
		Subsolar:           Vec3{Y: 1},
	}
}

// Altitude returns the height of p above the surface.
func (p *Planet) Altitude(pos Vec3) float64 {
	return pos.Norm() - p.Radius
}

// SolarZenithAngle is the unsigned angle between a layer normal and the
// sub-solar direction.
func (p *Planet) SolarZenithAngle(normal Vec3) float64 {
	return normal.Angle(p.Subsolar)
}

// SolarZenithAngle2D is the clockwise angle in the x–y plane from the
// sub-solar direction to normal, in (-π, π].
func (p *Planet) SolarZenithAngle2D(normal Vec3) float64 {
	a := math.Atan2(normal.X, normal.Y) - math.Atan2(p.Subsolar.X, p.Subsolar.Y)
	switch {
	case a > math.Pi:
		a -= 2 * math.Pi
	case a <= -math.Pi:
		a += 2 * math.Pi
	}
	return a
}

// layer is the state shared by all geometry variants.
type layer struct {
	mesh   Plane
	planet *Planet
}

func (l *layer) Mesh() Plane { return l.mesh }

// Altitude returns the layer height above the surface, measured at the
// mesh centrepoint.
func (l *layer) Altitude() float64 {
	return l.planet.Altitude(l.mesh.Centerpoint)
}

func loggerFrom(ctx context.Context) logging.Logger {
	if log := logging.LoggerFromContext(ctx); log != nil {
		return log
	}
	return logging.Noop()
}

// foldQuarterTurn reduces angles above π/2 by π/2. It is not a general
// normalisation; incident and attenuation angles rely on this exact rule.
func foldQuarterTurn(angle float64) float64 {
	if angle > math.Pi/2 {
		angle -= math.Pi / 2
	}
	return angle
}

// safeAsin clamps x into asin's domain and logs when the input was outside
// it, which signals an inconsistent refractive index ratio upstream.
func safeAsin(ctx context.Context, what string, x float64) float64 {
	if x > 1 || x < -1 {
		loggerFrom(ctx).Debug(ctx, "asin argument clamped",
			logging.String("quantity", what),
			logging.Float64("value", x),
		)
		x = clampUnit(x)
	}
	return math.Asin(x)
}
