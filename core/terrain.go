package core

import "context"

// Terrain is the planetary surface. A ray striking it is mirrored about the
// surface normal and its trace ends.
type Terrain struct {
	layer
}

// NewTerrain returns a surface segment on mesh.
func NewTerrain(mesh Plane, planet *Planet) *Terrain {
	return &Terrain{layer: layer{mesh: mesh, planet: planet}}
}

func (t *Terrain) Type() GeometryType { return GeometryTerrain }

func (t *Terrain) Interact(ctx context.Context, r *Ray, hit Vec3, sink SampleSink) {
	n := t.mesh.Normal
	r.Direction = r.Direction.Sub(n.Scale(2 * r.Direction.Dot(n))).Normalize()
	r.Behaviour = BehaviourReflected
	r.Origin = hit

	if sink != nil {
		s := r.snapshot()
		s.CollisionType = GeometryTerrain
		sink.AddSample(s)
	}
}
