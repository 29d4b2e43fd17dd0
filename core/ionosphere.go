package core

import (
	"context"
	"math"

	"github.com/signalsfoundry/ionotracer/internal/logging"
)

// ChapmanProfile describes one photochemical ionisation layer. Several
// profiles may contribute density to the same Ionosphere segment.
type ChapmanProfile struct {
	Name         string
	PeakDensity  float64 // m^-3
	PeakAltitude float64 // m, for an overhead sun
	// NeutralScaleHeight overrides the planet's scale height when non-zero.
	NeutralScaleHeight float64
}

// ChapmanDensity evaluates a daytime Chapman profile at altitude for a layer
// whose normal makes angle sza with the sub-solar direction. The night side
// (cos sza <= 0) receives no photoionisation and yields 0.
func ChapmanDensity(p ChapmanProfile, altitude, scaleHeight, sza float64) float64 {
	cosSZA := math.Cos(sza)
	if cosSZA <= 0 {
		return 0
	}
	if p.NeutralScaleHeight > 0 {
		scaleHeight = p.NeutralScaleHeight
	}
	correctedPeak := p.PeakAltitude + peakShiftScale*math.Log(1/cosSZA)
	z := (altitude - correctedPeak) / scaleHeight
	return p.PeakDensity * math.Exp(0.5*(1-z-math.Exp(-z)/cosSZA))
}

// Ionosphere is a plasma layer segment. Its electron density is the
// superposition of every profile applied before tracing starts.
type Ionosphere struct {
	layer

	LayerHeight float64 // m
	Model       RefractionModel

	electronNumberDensity float64
	peakElectronDensity   float64
}

// NewIonosphere returns an empty (zero density) plasma layer.
func NewIonosphere(mesh Plane, layerHeight float64, planet *Planet) *Ionosphere {
	return &Ionosphere{
		layer:       layer{mesh: mesh, planet: planet},
		LayerHeight: layerHeight,
		Model:       RefractionKelso,
	}
}

func (io *Ionosphere) Type() GeometryType { return GeometryIonosphere }

// Interact decides between reflection and refraction, moves the ray to hit
// and accumulates attenuation and the three dispersive delays.
func (io *Ionosphere) Interact(ctx context.Context, r *Ray, hit Vec3, sink SampleSink) {
	switch io.DetermineWaveBehaviour(r) {
	case BehaviourReflected:
		io.reflect(ctx, r)
	case BehaviourRefracted:
		io.refract(ctx, r)
	}
	r.Origin = hit

	io.attenuate(ctx, r)
	tec := io.TEC()
	f2 := r.Frequency * r.Frequency
	r.RangeDelay += rangeDelayCoefficient * tec / f2
	r.PhaseAdvance += phaseAdvanceCoefficient / r.Frequency * tec
	r.TimeDelay += timeDelayCoefficient / f2 * tec

	if sink != nil {
		s := r.snapshot()
		s.PlasmaFrequency = io.PlasmaFrequency()
		s.ElectronDensity = io.electronNumberDensity
		s.RefractiveIndexSqrd = r.PreviousRefractiveIndex * r.PreviousRefractiveIndex
		s.CollisionType = GeometryIonosphere
		sink.AddSample(s)
	}
}

// DetermineWaveBehaviour classifies the interaction and records the result
// on the ray. Below the plasma frequency the layer is opaque; otherwise
// total internal reflection applies past the critical angle when the ray
// moves into a lower index.
func (io *Ionosphere) DetermineWaveBehaviour(r *Ray) Behaviour {
	r.Behaviour = BehaviourNone

	incident := io.IncidentAngle(r)
	if r.AngularFrequency() < io.PlasmaFrequency() {
		r.Behaviour = BehaviourReflected
		return r.Behaviour
	}

	n := io.RefractiveIndex(r)
	critical := CriticalAngle(n, r.PreviousRefractiveIndex)
	if r.PreviousRefractiveIndex > n && incident >= critical {
		r.Behaviour = BehaviourReflected
	} else {
		r.Behaviour = BehaviourRefracted
	}
	return r.Behaviour
}

// IncidentAngle is the absolute angle between the ray and the layer normal,
// so it does not depend on which side the ray arrives from.
func (io *Ionosphere) IncidentAngle(r *Ray) float64 {
	n := io.mesh.Normal
	denom := r.Direction.Norm() * n.Norm()
	if denom == 0 {
		return 0
	}
	return foldQuarterTurn(math.Acos(clampUnit(math.Abs(r.Direction.Dot(n)) / denom)))
}

// RefractiveIndex returns the layer's index for the ray's frequency under
// the layer's model.
func (io *Ionosphere) RefractiveIndex(r *Ray) float64 {
	switch io.Model {
	case RefractionKelso:
		return KelsoRefractiveIndex(io.PlasmaFrequency(), r.AngularFrequency())
	default:
		// Appleton–Hartree is not implemented; the layer stays transparent.
		return 1.0
	}
}

func (io *Ionosphere) refract(ctx context.Context, r *Ray) {
	n := io.RefractiveIndex(r)
	cosI := math.Cos(io.IncidentAngle(r))
	ratio := r.PreviousRefractiveIndex / n

	radicand := 1 - ratio*ratio*(1-cosI*cosI)
	if radicand < 0 {
		loggerFrom(ctx).Debug(ctx, "refraction radicand clamped",
			logging.Float64("radicand", radicand),
			logging.Float64("n1", r.PreviousRefractiveIndex),
			logging.Float64("n2", n),
		)
		radicand = 0
	}
	k := ratio*cosI - math.Sqrt(radicand)

	var refracted Vec3
	if r.Direction.Y > 0 {
		refracted = r.Direction.Scale(ratio).Sub(io.mesh.Normal.Scale(k))
	} else {
		refracted = r.Direction.Scale(ratio).Add(io.mesh.Normal.Scale(k))
	}

	loggerFrom(ctx).Debug(ctx, "refract",
		logging.Float64("altitude", io.Altitude()),
		logging.Float64("n1", r.PreviousRefractiveIndex),
		logging.Float64("n2", n),
		logging.Float64("theta_i_deg", math.Acos(cosI)*180/math.Pi),
	)

	r.Direction = refracted.Normalize()
	r.PreviousRefractiveIndex = n
}

func (io *Ionosphere) reflect(ctx context.Context, r *Ray) {
	incident := io.IncidentAngle(r)

	var reflected Vec3
	if r.Direction.Y > 0 {
		reflected = r.Direction.Sub(io.mesh.Normal.Scale(2 * math.Cos(incident)))
	} else {
		reflected = r.Direction.Sub(io.mesh.Normal.Scale(2 * math.Cos(math.Pi-incident)))
	}

	loggerFrom(ctx).Debug(ctx, "reflect",
		logging.Float64("altitude", io.Altitude()),
		logging.Float64("theta_i_deg", incident*180/math.Pi),
		logging.Float64("plasma_frequency", io.PlasmaFrequency()),
	)

	r.Direction = reflected.Normalize()
}

// attenuate applies collisional absorption over the slant path through the
// layer. The loss is never positive.
func (io *Ionosphere) attenuate(ctx context.Context, r *Ray) {
	thetaR := foldQuarterTurn(io.mesh.Normal.Angle(r.Direction))
	cosR := math.Cos(thetaR)
	if cosR < MinGrazingCos {
		loggerFrom(ctx).Debug(ctx, "grazing path length floored",
			logging.Float64("theta_r_deg", thetaR*180/math.Pi),
		)
		cosR = MinGrazingCos
	}
	path := io.LayerHeight / cosR

	nu := io.CollisionFrequency()
	omega := r.AngularFrequency()
	loss := attenuationCoefficient *
		(io.electronNumberDensity * nu / (omega*omega + nu*nu)) *
		path
	if loss < 0 {
		r.SignalPower += loss
	}
}

// PlasmaFrequency is ωp of the layer's current electron density, rad/s.
func (io *Ionosphere) PlasmaFrequency() float64 {
	return PlasmaFrequency(io.electronNumberDensity)
}

// PeakPlasmaFrequency is ωp at the largest peak density superimposed on
// this layer.
func (io *Ionosphere) PeakPlasmaFrequency() float64 {
	return PlasmaFrequency(io.peakElectronDensity)
}

// ElectronNumberDensity returns the superimposed density, m^-3.
func (io *Ionosphere) ElectronNumberDensity() float64 {
	return io.electronNumberDensity
}

// PeakElectronDensity returns the largest profile peak seen by this layer.
func (io *Ionosphere) PeakElectronDensity() float64 {
	return io.peakElectronDensity
}

// CollisionFrequency models electron–CO2 collisions with an exponentially
// thinning neutral atmosphere, Hz.
func (io *Ionosphere) CollisionFrequency() float64 {
	nCO2 := io.planet.SurfaceNCO2 * math.Exp(-io.Altitude()/io.planet.NeutralScaleHeight)
	return collisionCoefficient * nCO2
}

// TEC is the electron content along the vertical extent of the layer.
func (io *Ionosphere) TEC() float64 {
	return io.electronNumberDensity * io.LayerHeight
}

// SuperimposeElectronDensity adds the contribution of p at this layer's
// altitude. Density only accumulates. Not safe for concurrent use; all
// profiles must be applied before tracing.
func (io *Ionosphere) SuperimposeElectronDensity(p ChapmanProfile) {
	if p.PeakDensity > io.peakElectronDensity {
		io.peakElectronDensity = p.PeakDensity
	}
	sza := io.planet.SolarZenithAngle(io.mesh.Normal)
	io.electronNumberDensity += ChapmanDensity(p, io.Altitude(), io.planet.NeutralScaleHeight, sza)
}
