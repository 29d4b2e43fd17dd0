package core

import (
	"context"
	"math"

	"github.com/signalsfoundry/ionotracer/internal/logging"
)

// Atmosphere is a neutral-gas layer segment. It only bends rays; it never
// reflects and never attenuates.
type Atmosphere struct {
	layer

	LayerHeight float64 // m
}

// NewAtmosphere returns a neutral layer on mesh.
func NewAtmosphere(mesh Plane, layerHeight float64, planet *Planet) *Atmosphere {
	return &Atmosphere{
		layer:       layer{mesh: mesh, planet: planet},
		LayerHeight: layerHeight,
	}
}

func (a *Atmosphere) Type() GeometryType { return GeometryAtmosphere }

func (a *Atmosphere) Interact(ctx context.Context, r *Ray, hit Vec3, sink SampleSink) {
	a.refract(ctx, r)
	r.Behaviour = BehaviourRefracted
	r.Origin = hit

	if sink != nil {
		s := r.snapshot()
		s.RefractiveIndexSqrd = r.PreviousRefractiveIndex * r.PreviousRefractiveIndex
		s.CollisionType = GeometryAtmosphere
		sink.AddSample(s)
	}
}

// refract applies Snell's law in terms of the ray's elevation angle and the
// layer's solar zenith angle, then re-points the ray.
func (a *Atmosphere) refract(ctx context.Context, r *Ray) {
	n := a.RefractiveIndex()
	sza := a.planet.SolarZenithAngle2D(a.mesh.Normal)
	descending := r.Direction.Y < 0

	thetaI := a.IncidentAngle(r)
	if descending {
		thetaI = math.Pi - thetaI
	}
	thetaR := safeAsin(ctx, "atmosphere_theta_r", r.PreviousRefractiveIndex/n*math.Sin(thetaI))

	beta := math.Pi/2 - thetaR - sza
	if descending {
		beta = -math.Pi/2 + thetaR - sza
	}

	loggerFrom(ctx).Debug(ctx, "atmospheric refraction",
		logging.Float64("altitude", a.Altitude()),
		logging.Float64("theta_i_deg", thetaI*180/math.Pi),
		logging.Float64("beta_deg", beta*180/math.Pi),
	)

	r.SetAngle(beta)
	r.PreviousRefractiveIndex = n
}

// IncidentAngle is the ray's angle from the layer's local vertical, derived
// from the ray elevation and the layer's solar zenith angle.
func (a *Atmosphere) IncidentAngle(r *Ray) float64 {
	beta := math.Atan2(r.Direction.Y, r.Direction.X)
	return math.Pi/2 - beta - a.planet.SolarZenithAngle2D(a.mesh.Normal)
}

// RefractiveIndex follows an exponential refractivity profile,
// n = 1 + N0·exp(-h/H)·1e-6.
func (a *Atmosphere) RefractiveIndex() float64 {
	refractivity := atmosphereSurfaceRefractivity * math.Exp(-a.Altitude()/a.planet.NeutralScaleHeight)
	return 1 + refractivity*1e-6
}
