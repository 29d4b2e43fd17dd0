package core

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	ErrNilGeometry       = errors.New("nil geometry")
	ErrDuplicateGeometry = errors.New("geometry with identical mesh already in scene")
	ErrSceneSealed       = errors.New("scene is sealed")
)

// Intersection is the result of a successful SceneManager query.
type Intersection struct {
	// Index is the geometry's position in the scene, stable for its
	// lifetime.
	Index    int
	Geometry Geometry
	Hit      Vec3
	Distance float64
}

// SceneManager holds the discretised scene. It is append-only until Seal and
// read-only afterwards, at which point any number of workers may query it
// concurrently.
type SceneManager struct {
	// MaxRadius excludes hits further than this from the planet centre.
	// Zero disables the bound.
	MaxRadius float64

	mu         sync.RWMutex
	sealed     bool
	geometries []Geometry
	meshes     map[[2]Vec3]struct{}
}

// NewSceneManager returns an empty, unsealed scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{
		meshes: make(map[[2]Vec3]struct{}),
	}
}

// Add appends g to the scene and returns its index.
func (sm *SceneManager) Add(g Geometry) (int, error) {
	if g == nil {
		return -1, ErrNilGeometry
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.sealed {
		return -1, ErrSceneSealed
	}
	mesh := g.Mesh()
	key := [2]Vec3{mesh.Begin, mesh.End}
	if _, exists := sm.meshes[key]; exists {
		return -1, fmt.Errorf("%w: %s at %+v", ErrDuplicateGeometry, g.Type(), mesh.Centerpoint)
	}
	sm.meshes[key] = struct{}{}
	sm.geometries = append(sm.geometries, g)
	return len(sm.geometries) - 1, nil
}

// SuperimposeProfile adds p to every ionospheric layer in the scene. It
// fails once the scene is sealed, so density is final before tracing.
func (sm *SceneManager) SuperimposeProfile(p ChapmanProfile) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.sealed {
		return ErrSceneSealed
	}
	for _, g := range sm.geometries {
		if io, ok := g.(*Ionosphere); ok {
			io.SuperimposeElectronDensity(p)
		}
	}
	return nil
}

// Seal freezes the scene. Sealing twice is a no-op.
func (sm *SceneManager) Seal() {
	sm.mu.Lock()
	sm.sealed = true
	sm.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (sm *SceneManager) Sealed() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sealed
}

// Len returns the number of geometries in the scene.
func (sm *SceneManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.geometries)
}

// Geometry returns the geometry at index i, or nil when out of range.
func (sm *SceneManager) Geometry(i int) Geometry {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if i < 0 || i >= len(sm.geometries) {
		return nil
	}
	return sm.geometries[i]
}

// Intersect finds the nearest geometry ahead of r. The geometry r last
// interacted with is skipped so a ray sitting on a boundary cannot match
// it again before moving. ok is false when nothing lies ahead, which means
// the ray has left the scene.
func (sm *SceneManager) Intersect(r *Ray) (Intersection, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	best := Intersection{Index: -1, Distance: math.Inf(1)}
	maxR2 := sm.MaxRadius * sm.MaxRadius

	for i, g := range sm.geometries {
		if i == r.lastHit {
			continue
		}
		t, ok := g.Mesh().intersect(r.Origin, r.Direction)
		if !ok || t <= MinHitDistance || t >= best.Distance {
			continue
		}
		hit := r.Origin.Add(r.Direction.Scale(t))
		if sm.MaxRadius > 0 && hit.Dot(hit) > maxR2 {
			continue
		}
		best = Intersection{Index: i, Geometry: g, Hit: hit, Distance: t}
	}

	if best.Index < 0 {
		return Intersection{Index: -1}, false
	}
	return best, true
}
