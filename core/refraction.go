package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrModelNotImplemented is returned when a refractive-index model exists as
// a name but has no implementation yet.
var ErrModelNotImplemented = errors.New("refractive index model not implemented")

// RefractionModel selects the plasma refractive-index formula.
type RefractionModel int

const (
	// RefractionKelso is the collisionless, unmagnetised approximation
	// n = sqrt(1 - X) with X = ωp²/ω².
	RefractionKelso RefractionModel = iota
	// RefractionAppletonHartree is reserved for the magnetised cold-plasma
	// dispersion relation.
	RefractionAppletonHartree
)

func (m RefractionModel) String() string {
	switch m {
	case RefractionKelso:
		return "kelso"
	case RefractionAppletonHartree:
		return "appleton-hartree"
	default:
		return fmt.Sprintf("RefractionModel(%d)", int(m))
	}
}

// ParseRefractionModel maps a config name to a model. Only implemented
// models are accepted.
func ParseRefractionModel(s string) (RefractionModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kelso":
		return RefractionKelso, nil
	case "appleton-hartree", "ahdr":
		return RefractionAppletonHartree, fmt.Errorf("%w: %s", ErrModelNotImplemented, RefractionAppletonHartree)
	default:
		return RefractionKelso, fmt.Errorf("unknown refraction model %q", s)
	}
}

// PlasmaFrequency returns ωp = sqrt(ne e² / (me ε0)) in rad/s.
func PlasmaFrequency(electronDensity float64) float64 {
	return math.Sqrt(electronDensity * ElementaryCharge * ElementaryCharge /
		(ElectronMass * PermittivityVacuum))
}

// KelsoRefractiveIndex returns sqrt(1 - ωp²/ω²). It is NaN below the
// plasma cutoff; callers check the cutoff first.
func KelsoRefractiveIndex(plasmaFrequency, angularFrequency float64) float64 {
	x := (plasmaFrequency * plasmaFrequency) / (angularFrequency * angularFrequency)
	return math.Sqrt(1 - x)
}

// CriticalAngle returns asin(min(n1,n2)/max(n1,n2)).
func CriticalAngle(n1, n2 float64) float64 {
	lo, hi := n1, n2
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Asin(clampUnit(lo / hi))
}
