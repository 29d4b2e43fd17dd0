package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLayout is returned by BuildScene for a layout it cannot mesh.
var ErrInvalidLayout = errors.New("invalid scene layout")

// ShellLayout describes a stack of concentric shells between two altitudes.
type ShellLayout struct {
	Enabled       bool
	AltitudeStart float64 // m
	AltitudeEnd   float64 // m, inclusive
	LayerHeight   float64 // m
}

// Altitudes lists the shell altitudes bottom-up.
func (s ShellLayout) Altitudes() ([]float64, error) {
	if !s.Enabled {
		return nil, nil
	}
	if s.LayerHeight <= 0 {
		return nil, fmt.Errorf("%w: layer height must be positive, got %g", ErrInvalidLayout, s.LayerHeight)
	}
	if s.AltitudeEnd < s.AltitudeStart || s.AltitudeStart < 0 {
		return nil, fmt.Errorf("%w: altitude range [%g, %g]", ErrInvalidLayout, s.AltitudeStart, s.AltitudeEnd)
	}
	count := int(math.Floor((s.AltitudeEnd-s.AltitudeStart)/s.LayerHeight+1e-6)) + 1
	out := make([]float64, count)
	for i := range out {
		out[i] = s.AltitudeStart + float64(i)*s.LayerHeight
	}
	return out, nil
}

// SceneLayout is the discretisation of a full scene.
type SceneLayout struct {
	// AngularStep is the arc covered by one mesh segment, degrees. It must
	// divide 360 into a whole number of segments.
	AngularStep float64
	Ionosphere  ShellLayout
	Atmosphere  ShellLayout
	Terrain     bool
	Model       RefractionModel
	// MaxRadius bounds intersections; zero leaves the scene unbounded.
	MaxRadius float64
}

// DefaultSceneLayout is the Martian dayside layout: plasma shells every
// 500 m between 80 and 200 km, 1° segments, terrain and no neutral
// atmosphere.
func DefaultSceneLayout() SceneLayout {
	return SceneLayout{
		AngularStep: 1,
		Ionosphere: ShellLayout{
			Enabled:       true,
			AltitudeStart: 80e3,
			AltitudeEnd:   200e3,
			LayerHeight:   500,
		},
		Atmosphere: ShellLayout{
			AltitudeStart: 1e3,
			AltitudeEnd:   50e3,
			LayerHeight:   1e3,
		},
		Terrain: true,
		Model:   RefractionKelso,
	}
}

// segments returns the number of mesh segments per ring.
func (l SceneLayout) segments() (int, error) {
	if l.AngularStep <= 0 || l.AngularStep > 180 {
		return 0, fmt.Errorf("%w: angular step %g out of (0, 180]", ErrInvalidLayout, l.AngularStep)
	}
	n := 360 / l.AngularStep
	rounded := math.Round(n)
	if math.Abs(n-rounded) > 1e-9 {
		return 0, fmt.Errorf("%w: angular step %g does not divide 360", ErrInvalidLayout, l.AngularStep)
	}
	return int(rounded), nil
}

// ring returns the segment end points of a closed ring of radius r. The
// last point repeats the first exactly so adjacent segments share vertices.
func ring(radius float64, segments int) []Vec3 {
	pts := make([]Vec3, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Vec3{X: radius * math.Sin(theta), Y: radius * math.Cos(theta)}
	}
	pts[segments] = pts[0]
	return pts
}

// BuildScene meshes planet according to layout, applies every profile to the
// ionospheric shells and returns the unsealed scene. Geometries are added
// bottom-up: terrain, atmosphere, then ionosphere.
func BuildScene(planet *Planet, layout SceneLayout, profiles []ChapmanProfile) (*SceneManager, error) {
	if planet == nil || planet.Radius <= 0 {
		return nil, fmt.Errorf("%w: planet radius must be positive", ErrInvalidLayout)
	}
	segments, err := layout.segments()
	if err != nil {
		return nil, err
	}
	ionoAlts, err := layout.Ionosphere.Altitudes()
	if err != nil {
		return nil, fmt.Errorf("ionosphere: %w", err)
	}
	atmoAlts, err := layout.Atmosphere.Altitudes()
	if err != nil {
		return nil, fmt.Errorf("atmosphere: %w", err)
	}

	sm := NewSceneManager()
	sm.MaxRadius = layout.MaxRadius

	addRing := func(altitude float64, build func(Plane) Geometry) error {
		pts := ring(planet.Radius+altitude, segments)
		for i := 0; i < segments; i++ {
			if _, err := sm.Add(build(NewPlane(pts[i], pts[i+1]))); err != nil {
				return fmt.Errorf("altitude %g: %w", altitude, err)
			}
		}
		return nil
	}

	if layout.Terrain {
		if err := addRing(0, func(p Plane) Geometry { return NewTerrain(p, planet) }); err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
	}
	for _, alt := range atmoAlts {
		h := layout.Atmosphere.LayerHeight
		if err := addRing(alt, func(p Plane) Geometry { return NewAtmosphere(p, h, planet) }); err != nil {
			return nil, fmt.Errorf("atmosphere: %w", err)
		}
	}
	for _, alt := range ionoAlts {
		h := layout.Ionosphere.LayerHeight
		err := addRing(alt, func(p Plane) Geometry {
			io := NewIonosphere(p, h, planet)
			io.Model = layout.Model
			return io
		})
		if err != nil {
			return nil, fmt.Errorf("ionosphere: %w", err)
		}
	}

	for _, p := range profiles {
		if err := sm.SuperimposeProfile(p); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	return sm, nil
}
