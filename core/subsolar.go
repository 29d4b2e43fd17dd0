package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

// SubsolarDirection returns the unit vector towards the sub-solar point at t,
// expressed in the scene frame of a beacon sitting on the equator at
// longitude (radians east): +y is the beacon's local vertical, +x points
// east and +z north.
//
// The body-fixed frame is rotated by Greenwich sidereal time, so for bodies
// other than Earth the epoch fixes a repeatable day/night phase rather than
// the true local solar time.
func SubsolarDirection(t time.Time, longitude float64) Vec3 {
	t = t.UTC()

	ra, dec := solar.ApparentEquatorial(julian.TimeToJD(t))
	raRad, decRad := ra.Rad(), dec.Rad()

	// Inertial frame.
	x := math.Cos(decRad) * math.Cos(raRad)
	y := math.Cos(decRad) * math.Sin(raRad)
	z := math.Sin(decRad)

	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, min, sec))

	// Body-fixed frame.
	xf := x*math.Cos(gmst) + y*math.Sin(gmst)
	yf := -x*math.Sin(gmst) + y*math.Cos(gmst)

	up := xf*math.Cos(longitude) + yf*math.Sin(longitude)
	east := -xf*math.Sin(longitude) + yf*math.Cos(longitude)
	return Vec3{X: east, Y: up, Z: z}.Normalize()
}
