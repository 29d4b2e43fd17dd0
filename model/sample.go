package model

// GeometryType tags which kind of scene element a sample was recorded at.
type GeometryType int

const (
	GeometryNone GeometryType = iota
	GeometryIonosphere
	GeometryAtmosphere
	GeometryTerrain
)

func (g GeometryType) String() string {
	switch g {
	case GeometryIonosphere:
		return "ionosphere"
	case GeometryAtmosphere:
		return "atmosphere"
	case GeometryTerrain:
		return "terrain"
	default:
		return "none"
	}
}

// Behaviour is the last wave-behaviour decision made for a ray.
type Behaviour int

const (
	BehaviourNone Behaviour = iota
	BehaviourReflected
	BehaviourRefracted
)

func (b Behaviour) String() string {
	switch b {
	case BehaviourReflected:
		return "reflected"
	case BehaviourRefracted:
		return "refracted"
	default:
		return "none"
	}
}

// Termination records why a trace stopped. TerminationNone marks a per-layer
// sample taken while the ray was still propagating.
type Termination int

const (
	TerminationNone Termination = iota
	// TerminationEscaped: no further geometry ahead of the ray.
	TerminationEscaped
	// TerminationTerrain: the ray struck the surface.
	TerminationTerrain
	// TerminationMaxBounces: the interaction budget ran out.
	TerminationMaxBounces
)

func (t Termination) String() string {
	switch t {
	case TerminationEscaped:
		return "escaped"
	case TerminationTerrain:
		return "terrain"
	case TerminationMaxBounces:
		return "max_bounces"
	default:
		return "none"
	}
}

// Sample is the fixed-field record emitted at every layer crossing and once
// more when a ray terminates. Exporters write it column by column.
type Sample struct {
	RayNumber int
	// Step orders the samples of one ray; the terminal sample carries the
	// highest step.
	Step int

	X, Y, Z float64

	// Launch geometry, radians.
	OriginalAngle   float64
	OriginalAzimuth float64

	Frequency    float64 // Hz
	SignalPower  float64 // dB
	RangeDelay   float64 // m
	PhaseAdvance float64 // rad
	TimeDelay    float64 // s
	TimeOfFlight float64 // s

	PlasmaFrequency     float64 // rad/s
	ElectronDensity     float64 // m^-3
	RefractiveIndexSqrd float64

	CollisionType GeometryType
	Behaviour     Behaviour
	BeaconID      int

	Terminal    bool
	Termination Termination
}
