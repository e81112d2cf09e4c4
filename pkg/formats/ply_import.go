package formats

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/Faultbox/plymesh/pkg/encoding"
	"github.com/Faultbox/plymesh/pkg/math"
	"github.com/Faultbox/plymesh/pkg/mesh"
	"github.com/Faultbox/plymesh/pkg/ply"
)

// Vertex coordinate tags passed through the reader.
const (
	axisX = iota
	axisY
	axisZ
)

// ImportPLY replaces the geometry of m with the mesh stored at path.
func ImportPLY(m *mesh.Model, path string) error {
	return ImportPLYWithOptions(m, path, DefaultPLYOptions())
}

// ImportPLYWithOptions replaces the geometry of m with the mesh stored at path.
//
// Vertices and faces of m are cleared first, even when the file cannot be
// opened. Layers and face layer tags are appended to what m already holds
// unless opts.ClearLayers is set. Polygons are split into triangles; each
// triangle keeps the layer tag of its polygon. On error m may hold the part of
// the mesh read before the failure.
func ImportPLYWithOptions(m *mesh.Model, path string, opts PLYOptions) (err error) {
	resetForImport(m, opts)

	r, err := ply.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() {
		err = multierr.Append(err, r.Close())
	}()

	return importPLY(m, r, opts)
}

// ReadPLY is ImportPLYWithOptions for an already opened stream.
func ReadPLY(m *mesh.Model, rd io.Reader, opts PLYOptions) error {
	resetForImport(m, opts)
	return importPLY(m, ply.NewReader(rd), opts)
}

func resetForImport(m *mesh.Model, opts PLYOptions) {
	m.ClearGeometry()
	if opts.ClearLayers {
		m.ClearLayers()
	}
}

func importPLY(m *mesh.Model, r *ply.Reader, opts PLYOptions) error {
	if err := r.ReadHeader(); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	ctx := newParsingContext(m, opts.LayerEncoding)
	ctx.register(r)

	if err := r.Read(); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

// faceRecord is the face currently being read.
type faceRecord struct {
	corners  []int
	layer    int
	hasLayer bool
}

// parsingContext accumulates one record per element instance and commits it
// to the model once the reader reports the end of that instance.
type parsingContext struct {
	model *mesh.Model
	codec encoding.Codec

	// lastFaceWasSplit is set when the last committed face had more than
	// three corners and produced several triangles.
	lastFaceWasSplit bool

	vertex    math.Vec3
	face      faceRecord
	layerName []byte
}

func newParsingContext(m *mesh.Model, codec encoding.Codec) *parsingContext {
	return &parsingContext{model: m, codec: codec}
}

// register binds the context to the properties present in the header.
func (c *parsingContext) register(r *ply.Reader) {
	coords := r.SetReadCallback(plyVertex, "x", c.onVertex, nil, axisX)
	coords += r.SetReadCallback(plyVertex, "y", c.onVertex, nil, axisY)
	coords += r.SetReadCallback(plyVertex, "z", c.onVertex, nil, axisZ)
	if coords > 0 {
		r.SetElementEndCallback(plyVertex, c.endVertex)
	}

	if r.SetReadCallback(plyFace, plyVertexIndices, c.onFaceIndex, nil, 0) > 0 {
		r.SetReadCallback(plyFace, plyLayerID, c.onFaceLayer, nil, 0)
		r.SetElementEndCallback(plyFace, c.endFace)
	}

	if r.SetReadCallback(plyLayer, plyLayerName, c.onLayerName, nil, 0) > 0 {
		r.SetElementEndCallback(plyLayer, c.endLayer)
	}
}

func (c *parsingContext) onVertex(arg *ply.Argument) error {
	_, axis := arg.UserData()
	v := float32(arg.Value())
	switch axis {
	case axisX:
		c.vertex.X = v
	case axisY:
		c.vertex.Y = v
	case axisZ:
		c.vertex.Z = v
	}
	return nil
}

func (c *parsingContext) endVertex(string, int) error {
	c.model.Vertices = append(c.model.Vertices, c.vertex)
	c.vertex = math.Vec3{}
	return nil
}

func (c *parsingContext) onFaceIndex(arg *ply.Argument) error {
	// Corners are appended as they arrive, never preallocated from the length.
	if _, _, index := arg.Property(); index < 0 {
		c.face.corners = c.face.corners[:0]
		return nil
	}
	c.face.corners = append(c.face.corners, int(arg.Value()))
	return nil
}

func (c *parsingContext) onFaceLayer(arg *ply.Argument) error {
	c.face.layer = int(arg.Value())
	c.face.hasLayer = true
	return nil
}

// endFace fans the polygon out from its first corner: (v0, v[i-1], v[i]).
// A quad (v0,v1,v2,v3) becomes (v0,v1,v2) and (v0,v2,v3). Missing corners of
// a polygon with fewer than three stay zero.
func (c *parsingContext) endFace(string, int) error {
	corners := c.face.corners
	for len(corners) < 3 {
		corners = append(corners, 0)
	}

	c.addTriangle(mesh.Face{corners[0], corners[1], corners[2]})
	for i := 3; i < len(corners); i++ {
		c.addTriangle(mesh.Face{corners[0], corners[i-1], corners[i]})
	}
	c.lastFaceWasSplit = len(corners) > 3

	c.face.corners = corners[:0]
	c.face.layer, c.face.hasLayer = 0, false
	return nil
}

func (c *parsingContext) addTriangle(f mesh.Face) {
	c.model.Faces = append(c.model.Faces, f)
	if c.face.hasLayer {
		c.model.FaceLayers = append(c.model.FaceLayers, c.face.layer)
	}
}

// onLayerName receives the name length first, then one byte per character.
func (c *parsingContext) onLayerName(arg *ply.Argument) error {
	if _, _, index := arg.Property(); index < 0 {
		c.layerName = c.layerName[:0]
		return nil
	}
	c.layerName = append(c.layerName, byte(int(arg.Value())))
	return nil
}

func (c *parsingContext) endLayer(string, int) error {
	c.model.Layers = append(c.model.Layers, mesh.Layer{Name: c.codec.Decode(c.layerName)})
	c.layerName = c.layerName[:0]
	return nil
}
