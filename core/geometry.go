package core

import "math"

// Vec3 is a position or direction in the planet-centred frame, in metres.
// The scene lies in the x–y plane; Z is carried through but stays zero for
// every geometry BuildScene lays out.
type Vec3 struct {
	X, Y, Z float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Normalize returns the unit vector pointing along v. The zero vector is
// returned unchanged.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// Angle returns the unsigned angle between v and other in radians, in
// [0, π]. Degenerate (zero-length) inputs yield 0.
func (v Vec3) Angle(other Vec3) float64 {
	denom := v.Norm() * other.Norm()
	if denom == 0 {
		return 0
	}
	return math.Acos(clampUnit(v.Dot(other) / denom))
}

// cross2 is the z component of v × other, i.e. the 2-D cross product of the
// x–y projections.
func (v Vec3) cross2(other Vec3) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Plane is a discretised mesh element: a straight segment between two edge
// points with its midpoint and outward unit normal.
type Plane struct {
	Begin       Vec3
	End         Vec3
	Centerpoint Vec3
	Normal      Vec3
}

// NewPlane builds the mesh for the segment begin→end. The normal is the
// in-plane perpendicular of the segment oriented away from the planet centre.
func NewPlane(begin, end Vec3) Plane {
	center := begin.Add(end).Scale(0.5)
	edge := end.Sub(begin)
	normal := Vec3{X: edge.Y, Y: -edge.X}.Normalize()
	if normal.Dot(center) < 0 {
		normal = normal.Scale(-1)
	}
	return Plane{
		Begin:       begin,
		End:         end,
		Centerpoint: center,
		Normal:      normal,
	}
}

// intersect returns the distance t along dir from origin at which the ray
// crosses the segment, or ok=false when it misses or runs parallel to it.
// Only the x–y projection is considered.
func (p Plane) intersect(origin, dir Vec3) (t float64, ok bool) {
	edge := p.End.Sub(p.Begin)
	denom := dir.cross2(edge)
	if math.Abs(denom) < parallelEpsilon {
		return 0, false
	}
	diff := p.Begin.Sub(origin)
	t = diff.cross2(edge) / denom
	s := diff.cross2(dir) / denom
	if s < 0 || s > 1 {
		return 0, false
	}
	return t, true
}

// clampUnit limits x to [-1, 1] so rounding noise cannot push acos/asin out
// of their domain.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
