package core

// Physical constants (SI).
const (
	ElementaryCharge   = 1.60217657e-19  // C
	ElectronMass       = 9.10938291e-31  // kg
	PermittivityVacuum = 8.854187817e-12 // F/m
	SpeedOfLight       = 299792458.0     // m/s
	MarsRadius         = 3.39e6          // m
	MarsSurfaceNCO2    = 2.8e23          // m^-3
	NeutralScaleHeight = 11.1e3          // m, Mars lower thermosphere
)

// Model coefficients.
const (
	// collisionCoefficient converts CO2 number density to the
	// electron–neutral collision frequency (Hz per m^-3).
	collisionCoefficient = 1.0436e-7

	// attenuationCoefficient scales the collisional absorption term to dB.
	attenuationCoefficient = -4.6e-5

	rangeDelayCoefficient   = 0.403
	phaseAdvanceCoefficient = 8.44e-7
	timeDelayCoefficient    = 1.34e-7

	// peakShiftScale lifts the Chapman peak altitude with solar zenith angle.
	peakShiftScale = 1e4

	// atmosphereSurfaceRefractivity is N0 in N-units.
	atmosphereSurfaceRefractivity = 3.9
)

// Numerical tolerances.
const (
	// MinGrazingCos floors the cosine used to stretch a layer's height into a
	// slant path, bounding the path at 1000 layer heights.
	MinGrazingCos = 1e-3

	// MinHitDistance is the smallest forward distance (m) at which a
	// geometry counts as hit.
	MinHitDistance = 1e-6

	parallelEpsilon = 1e-12
)
