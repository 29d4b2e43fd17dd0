package export

import (
	"strconv"

	"github.com/signalsfoundry/ionotracer/model"
)

// column is one field of the flat sample record. text overrides the numeric
// rendering for enum fields in text formats.
type column struct {
	name  string
	value func(s model.Sample) float64
	text  func(s model.Sample) string
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var columns = []column{
	{name: "ray_number", value: func(s model.Sample) float64 { return float64(s.RayNumber) }},
	{name: "step", value: func(s model.Sample) float64 { return float64(s.Step) }},
	{name: "x", value: func(s model.Sample) float64 { return s.X }},
	{name: "y", value: func(s model.Sample) float64 { return s.Y }},
	{name: "z", value: func(s model.Sample) float64 { return s.Z }},
	{name: "original_angle", value: func(s model.Sample) float64 { return s.OriginalAngle }},
	{name: "original_azimuth", value: func(s model.Sample) float64 { return s.OriginalAzimuth }},
	{name: "frequency", value: func(s model.Sample) float64 { return s.Frequency }},
	{name: "signal_power", value: func(s model.Sample) float64 { return s.SignalPower }},
	{name: "range_delay", value: func(s model.Sample) float64 { return s.RangeDelay }},
	{name: "phase_advance", value: func(s model.Sample) float64 { return s.PhaseAdvance }},
	{name: "time_delay", value: func(s model.Sample) float64 { return s.TimeDelay }},
	{name: "time_of_flight", value: func(s model.Sample) float64 { return s.TimeOfFlight }},
	{name: "plasma_frequency", value: func(s model.Sample) float64 { return s.PlasmaFrequency }},
	{name: "electron_density", value: func(s model.Sample) float64 { return s.ElectronDensity }},
	{name: "refractive_index_sqrd", value: func(s model.Sample) float64 { return s.RefractiveIndexSqrd }},
	{
		name:  "collision_type",
		value: func(s model.Sample) float64 { return float64(s.CollisionType) },
		text:  func(s model.Sample) string { return s.CollisionType.String() },
	},
	{
		name:  "behaviour",
		value: func(s model.Sample) float64 { return float64(s.Behaviour) },
		text:  func(s model.Sample) string { return s.Behaviour.String() },
	},
	{name: "beacon_id", value: func(s model.Sample) float64 { return float64(s.BeaconID) }},
	{name: "terminal", value: func(s model.Sample) float64 { return boolValue(s.Terminal) }},
	{
		name:  "termination",
		value: func(s model.Sample) float64 { return float64(s.Termination) },
		text:  func(s model.Sample) string { return s.Termination.String() },
	},
}

// Columns returns the record field names in export order.
func Columns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.name
	}
	return out
}

func (c column) format(s model.Sample) string {
	if c.text != nil {
		return c.text(s)
	}
	return strconv.FormatFloat(c.value(s), 'g', -1, 64)
}
