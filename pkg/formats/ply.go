package formats

import (
	"errors"

	"github.com/Faultbox/plymesh/pkg/encoding"
	"github.com/Faultbox/plymesh/pkg/ply"
)

// PLY mesh errors. Header problems are reported as ply.ErrInvalidHeader.
var (
	ErrOpen   = errors.New("cannot open PLY file")
	ErrCreate = errors.New("cannot create PLY file")
	ErrParse  = errors.New("malformed PLY body")
)

// Element and property names of the PLY mesh schema.
const (
	plyVertex        = "vertex"
	plyFace          = "face"
	plyLayer         = "layer"
	plyVertexIndices = "vertex_indices"
	plyLayerID       = "layer_id"
	plyLayerName     = "layer_name"
)

// maxLayerNameLen is the longest name a uchar list length can describe.
const maxLayerNameLen = 255

// PLYOptions controls how meshes are read and written.
type PLYOptions struct {
	// Format of written files. Reading detects the format from the header.
	Format ply.Format
	// LayerEncoding converts layer names to and from file bytes.
	LayerEncoding encoding.Codec
	// Comments are written to the header.
	Comments []string
	// ObjInfo lines are written to the header after the comments.
	ObjInfo []string
	// ClearLayers empties the layer data of the target model before import.
	// By default only vertices and faces are cleared.
	ClearLayers bool
}

// DefaultPLYOptions returns binary big-endian output with raw layer names.
func DefaultPLYOptions() PLYOptions {
	return PLYOptions{Format: ply.FormatBinaryBigEndian}
}
