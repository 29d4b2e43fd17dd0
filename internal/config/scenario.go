package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/signalsfoundry/ionotracer/core"
)

// ExportSettings selects where and how samples are written after a run.
type ExportSettings struct {
	Path     string
	Format   string
	Compress bool
}

// Scenario is the typed description of one tracing run.
type Scenario struct {
	Planet     core.Planet
	Layout     core.SceneLayout
	Profiles   []core.ChapmanProfile
	Grid       core.LaunchGrid
	MaxBounces int
	Export     ExportSettings
	// Epoch is set when the sub-solar point was derived from a date.
	Epoch time.Time
}

// LoadScenario reads the document at path and converts it into a Scenario.
func LoadScenario(path string) (*Scenario, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return ScenarioFromDocument(doc)
}

// ScenarioFromDocument converts an already parsed document. "radius" and
// "surfaceNCO2" are mandatory; every other key has a default.
func ScenarioFromDocument(doc *Document) (*Scenario, error) {
	sc := &Scenario{}

	radius, err := doc.Int("radius")
	if err != nil {
		return nil, err
	}
	nco2, err := doc.Float("surfaceNCO2")
	if err != nil {
		return nil, err
	}
	scaleHeight, err := doc.FloatOr("neutralScaleHeight", core.NeutralScaleHeight)
	if err != nil {
		return nil, err
	}
	sc.Planet = core.Planet{
		Radius:             float64(radius),
		SurfaceNCO2:        nco2,
		NeutralScaleHeight: scaleHeight,
		Subsolar:           core.Vec3{Y: 1},
	}
	if err := readSubsolar(doc, sc); err != nil {
		return nil, err
	}

	if sc.Layout, err = readLayout(doc); err != nil {
		return nil, err
	}
	if sc.Profiles, err = readProfiles(doc); err != nil {
		return nil, err
	}
	if sc.Grid, err = readGrid(doc); err != nil {
		return nil, err
	}
	if sc.MaxBounces, err = doc.IntOr("maxBounces", core.DefaultMaxBounces); err != nil {
		return nil, err
	}
	if sc.Export, err = readExport(doc); err != nil {
		return nil, err
	}
	return sc, nil
}

func readSubsolar(doc *Document, sc *Scenario) error {
	if doc.Has("subsolar") && doc.Has("epoch") {
		return fmt.Errorf("%s: subsolar and epoch are mutually exclusive", doc.Source())
	}
	if doc.Has("subsolar") {
		v, err := doc.Floats("subsolar")
		if err != nil {
			return err
		}
		dir := core.Vec3{}
		if len(v) == 2 || len(v) == 3 {
			dir = core.Vec3{X: v[0], Y: v[1]}
			if len(v) == 3 {
				dir.Z = v[2]
			}
		}
		if dir.Norm() == 0 {
			return &TypeError{Source: doc.Source(), Key: doc.path("subsolar"), Want: "a non-zero 2 or 3 element vector"}
		}
		sc.Planet.Subsolar = dir.Normalize()
		return nil
	}
	if doc.Has("epoch") {
		raw, err := doc.String("epoch")
		if err != nil {
			return err
		}
		epoch, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return &TypeError{Source: doc.Source(), Key: doc.path("epoch"), Want: "an RFC 3339 timestamp", Err: err}
		}
		lon, err := doc.FloatOr("beaconLongitude", 0)
		if err != nil {
			return err
		}
		sc.Epoch = epoch
		sc.Planet.Subsolar = core.SubsolarDirection(epoch, lon*math.Pi/180)
	}
	return nil
}

func readLayout(doc *Document) (core.SceneLayout, error) {
	layout := core.DefaultSceneLayout()
	var err error

	if layout.AngularStep, err = doc.FloatOr("angularStep", layout.AngularStep); err != nil {
		return layout, err
	}
	if layout.MaxRadius, err = doc.FloatOr("maxRadius", 0); err != nil {
		return layout, err
	}
	if layout.Terrain, err = doc.BoolOr("terrain", layout.Terrain); err != nil {
		return layout, err
	}
	name, err := doc.StringOr("refraction", "kelso")
	if err != nil {
		return layout, err
	}
	if layout.Model, err = core.ParseRefractionModel(name); err != nil {
		return layout, fmt.Errorf("%s: refraction: %w", doc.Source(), err)
	}
	if layout.Ionosphere, err = readShell(doc, "ionosphere", layout.Ionosphere); err != nil {
		return layout, err
	}
	if layout.Atmosphere, err = readShell(doc, "atmosphere", layout.Atmosphere); err != nil {
		return layout, err
	}
	return layout, nil
}

// readShell overlays the section named key onto def. A present section is
// enabled unless it says otherwise.
func readShell(doc *Document, key string, def core.ShellLayout) (core.ShellLayout, error) {
	if !doc.Has(key) {
		return def, nil
	}
	sec, err := doc.Section(key)
	if err != nil {
		return def, err
	}
	out := def
	if out.Enabled, err = sec.BoolOr("enabled", true); err != nil {
		return def, err
	}
	if out.AltitudeStart, err = sec.FloatOr("altitudeStart", def.AltitudeStart); err != nil {
		return def, err
	}
	if out.AltitudeEnd, err = sec.FloatOr("altitudeEnd", def.AltitudeEnd); err != nil {
		return def, err
	}
	if out.LayerHeight, err = sec.FloatOr("layerHeight", def.LayerHeight); err != nil {
		return def, err
	}
	return out, nil
}

func readProfiles(doc *Document) ([]core.ChapmanProfile, error) {
	if !doc.Has("profiles") {
		return nil, nil
	}
	secs, err := doc.Sections("profiles")
	if err != nil {
		return nil, err
	}
	out := make([]core.ChapmanProfile, 0, len(secs))
	for i, sec := range secs {
		p := core.ChapmanProfile{}
		if p.Name, err = sec.StringOr("name", fmt.Sprintf("profile-%d", i)); err != nil {
			return nil, err
		}
		if p.PeakDensity, err = sec.Float("peakDensity"); err != nil {
			return nil, err
		}
		if p.PeakAltitude, err = sec.Float("peakAltitude"); err != nil {
			return nil, err
		}
		if p.NeutralScaleHeight, err = sec.FloatOr("neutralScaleHeight", 0); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func readSweep(doc *Document, key string) (core.Sweep, error) {
	sec, err := doc.Section(key)
	if err != nil {
		return core.Sweep{}, err
	}
	var s core.Sweep
	if s.Start, err = sec.Float("start"); err != nil {
		return s, err
	}
	if s.Stop, err = sec.FloatOr("stop", s.Start); err != nil {
		return s, err
	}
	if s.Step, err = sec.FloatOr("step", 0); err != nil {
		return s, err
	}
	return s, nil
}

func readGrid(doc *Document) (core.LaunchGrid, error) {
	var g core.LaunchGrid
	var err error
	if g.Frequencies, err = readSweep(doc, "frequencies"); err != nil {
		return g, err
	}
	if g.Angles, err = readSweep(doc, "angles"); err != nil {
		return g, err
	}
	if g.Altitude, err = doc.FloatOr("launchAltitude", 2); err != nil {
		return g, err
	}
	if g.BeaconID, err = doc.IntOr("beaconId", 0); err != nil {
		return g, err
	}
	azimuth, err := doc.FloatOr("azimuth", 0)
	if err != nil {
		return g, err
	}
	g.Azimuth = azimuth * math.Pi / 180
	return g, nil
}

func readExport(doc *Document) (ExportSettings, error) {
	out := ExportSettings{Format: "csv"}
	if !doc.Has("export") {
		return out, nil
	}
	sec, err := doc.Section("export")
	if err != nil {
		return out, err
	}
	if out.Path, err = sec.StringOr("path", ""); err != nil {
		return out, err
	}
	if out.Format, err = sec.StringOr("format", out.Format); err != nil {
		return out, err
	}
	if out.Compress, err = sec.BoolOr("compress", false); err != nil {
		return out, err
	}
	return out, nil
}

// IsConfigError reports whether err came from reading a document rather
// than from the domain validation that follows it.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrKeyMissing) || errors.Is(err, ErrParse) || errors.Is(err, ErrType)
}
