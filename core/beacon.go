package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptySweep is returned when a sweep produces no values.
var ErrEmptySweep = errors.New("sweep produces no values")

// Sweep is an inclusive [Start, Stop] range walked in Step increments.
// Step may be zero only when Start == Stop.
type Sweep struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
	Step  float64 `json:"step"`
}

// Values expands the sweep. A tolerance of a millionth of a step keeps
// Stop included despite accumulated rounding.
func (s Sweep) Values() ([]float64, error) {
	if s.Start == s.Stop {
		return []float64{s.Start}, nil
	}
	if s.Step <= 0 || s.Stop < s.Start {
		return nil, fmt.Errorf("%w: start=%g stop=%g step=%g", ErrEmptySweep, s.Start, s.Stop, s.Step)
	}
	count := int(math.Floor((s.Stop-s.Start)/s.Step+1e-6)) + 1
	out := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.Start+float64(i)*s.Step)
	}
	return out, nil
}

// Launch is one (frequency, angle) ray configuration.
type Launch struct {
	RayNumber int
	BeaconID  int
	Origin    Vec3
	Frequency float64 // Hz
	Angle     float64 // rad from local vertical
	Azimuth   float64 // rad
}

// NewRay builds the ray this launch describes.
func (l Launch) NewRay() *Ray {
	r := NewRay(l.Origin, l.Frequency)
	r.RayNumber = l.RayNumber
	r.BeaconID = l.BeaconID
	r.OriginalAngle = l.Angle
	r.OriginalAzimuth = l.Azimuth
	r.SetNormalAngle(l.Angle)
	return r
}

// LaunchGrid describes a transmitter sweeping frequencies and elevation
// angles from a fixed point above the +y pole of the planet.
type LaunchGrid struct {
	BeaconID int
	// Altitude of the transmitter above the surface, m.
	Altitude    float64
	Frequencies Sweep // Hz
	Angles      Sweep // degrees from local vertical
	Azimuth     float64
}

// Launches expands the grid frequency-major, numbering rays from 1.
func (g LaunchGrid) Launches(planet Planet) ([]Launch, error) {
	freqs, err := g.Frequencies.Values()
	if err != nil {
		return nil, fmt.Errorf("frequencies: %w", err)
	}
	angles, err := g.Angles.Values()
	if err != nil {
		return nil, fmt.Errorf("angles: %w", err)
	}
	for _, f := range freqs {
		if f <= 0 {
			return nil, fmt.Errorf("frequency must be positive, got %g", f)
		}
	}

	origin := Vec3{Y: planet.Radius + g.Altitude}
	out := make([]Launch, 0, len(freqs)*len(angles))
	for _, f := range freqs {
		for _, deg := range angles {
			out = append(out, Launch{
				RayNumber: len(out) + 1,
				BeaconID:  g.BeaconID,
				Origin:    origin,
				Frequency: f,
				Angle:     deg * math.Pi / 180,
				Azimuth:   g.Azimuth,
			})
		}
	}
	return out, nil
}
