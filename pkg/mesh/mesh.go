// Package mesh provides the in-memory polygonal model read from and written to mesh files.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/plymesh/pkg/math"
)

// Model validation errors.
var (
	ErrVertexIndex    = errors.New("face references a missing vertex")
	ErrFaceLayerCount = errors.New("face layer count does not match face count")
	ErrLayerIndex     = errors.New("face references a missing layer")
)

// Face is a triangle given by three indices into Model.Vertices.
type Face [3]int

// Layer is a named group of faces.
type Layer struct {
	Name string
}

// Model is a triangle mesh with optional per-face layer tags.
//
// FaceLayers is either empty or holds exactly one entry per face. Each entry
// is an index into Layers.
type Model struct {
	Vertices   []math.Vec3
	Faces      []Face
	FaceLayers []int
	Layers     []Layer
}

// HasLayers reports whether the layer data is complete enough to be written:
// at least one layer exists and every face carries a layer tag.
func (m *Model) HasLayers() bool {
	return len(m.Layers) > 0 && len(m.FaceLayers) == len(m.Faces)
}

// ClearGeometry removes all vertices and faces. Layer data is left untouched.
func (m *Model) ClearGeometry() {
	m.Vertices = m.Vertices[:0]
	m.Faces = m.Faces[:0]
}

// ClearLayers removes all layers and per-face layer tags.
func (m *Model) ClearLayers() {
	m.FaceLayers = m.FaceLayers[:0]
	m.Layers = m.Layers[:0]
}

// Bounds returns the axis-aligned bounding box of the vertices.
// Both corners are zero for a model without vertices.
func (m *Model) Bounds() (min, max math.Vec3) {
	if len(m.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}
	}

	min = m.Vertices[0]
	max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// LayerFaceCounts returns the number of faces tagged with each layer index.
func (m *Model) LayerFaceCounts() map[int]int {
	counts := make(map[int]int)
	for _, layer := range m.FaceLayers {
		counts[layer]++
	}
	return counts
}

// Validate checks that every face references existing vertices and, when
// layer tags are present, that they line up with faces and layers.
func (m *Model) Validate() error {
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d index %d (%d vertices)", ErrVertexIndex, i, idx, len(m.Vertices))
			}
		}
	}

	if len(m.FaceLayers) == 0 {
		return nil
	}
	if len(m.FaceLayers) != len(m.Faces) {
		return fmt.Errorf("%w: %d tags for %d faces", ErrFaceLayerCount, len(m.FaceLayers), len(m.Faces))
	}
	for i, layer := range m.FaceLayers {
		if layer < 0 || layer >= len(m.Layers) {
			return fmt.Errorf("%w: face %d layer %d (%d layers)", ErrLayerIndex, i, layer, len(m.Layers))
		}
	}
	return nil
}

// DegenerateFaces returns the indices of faces whose area is zero, either
// because two corners share a vertex or because the corners are collinear.
// Faces with out-of-range indices are skipped; use Validate for those.
func (m *Model) DegenerateFaces() []int {
	var out []int
	for i, f := range m.Faces {
		if !m.inRange(f) {
			continue
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			out = append(out, i)
			continue
		}
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		if b.Sub(a).Cross(c.Sub(a)).Length() == 0 {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) inRange(f Face) bool {
	for _, idx := range f {
		if idx < 0 || idx >= len(m.Vertices) {
			return false
		}
	}
	return true
}
