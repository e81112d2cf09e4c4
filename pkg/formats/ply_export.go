package formats

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/Faultbox/plymesh/pkg/mesh"
	"github.com/Faultbox/plymesh/pkg/ply"
)

// ExportPLY writes m to path as a binary big-endian PLY file.
func ExportPLY(m *mesh.Model, path string) error {
	return ExportPLYWithOptions(m, path, DefaultPLYOptions())
}

// ExportPLYWithOptions writes m to path.
//
// The layer element and the per-face layer_id property are only written when
// m.HasLayers reports complete layer data; otherwise layer data is dropped.
// Layer names are encoded before path is created, so an unencodable name
// leaves any existing file untouched.
func ExportPLYWithOptions(m *mesh.Model, path string, opts PLYOptions) (err error) {
	names, err := layerNamesFor(m, opts)
	if err != nil {
		return err
	}

	w, err := ply.Create(path, opts.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	return exportPLY(m, w, names, opts)
}

// WritePLY is ExportPLYWithOptions for an already opened stream.
func WritePLY(m *mesh.Model, wr io.Writer, opts PLYOptions) (err error) {
	names, err := layerNamesFor(m, opts)
	if err != nil {
		return err
	}

	w := ply.NewWriter(wr, opts.Format)
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	return exportPLY(m, w, names, opts)
}

// layerNamesFor returns the encoded layer names, or nil when m has no
// complete layer data.
func layerNamesFor(m *mesh.Model, opts PLYOptions) ([][]byte, error) {
	if !m.HasLayers() {
		return nil, nil
	}
	return encodeLayerNames(m.Layers, opts)
}

func exportPLY(m *mesh.Model, w *ply.Writer, names [][]byte, opts PLYOptions) error {
	useLayers := names != nil

	if err := declareSchema(m, w, useLayers, opts); err != nil {
		return fmt.Errorf("declaring schema: %w", err)
	}
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, v := range m.Vertices {
		if err := writeValues(w, float64(v.X), float64(v.Y), float64(v.Z)); err != nil {
			return err
		}
	}

	for i, f := range m.Faces {
		if err := writeValues(w, 3, float64(f[0]), float64(f[1]), float64(f[2])); err != nil {
			return err
		}
		if useLayers {
			if err := w.Write(float64(m.FaceLayers[i])); err != nil {
				return err
			}
		}
	}

	for _, name := range names {
		if err := w.Write(float64(len(name))); err != nil {
			return err
		}
		for _, ch := range name {
			if err := w.Write(float64(ch)); err != nil {
				return err
			}
		}
	}
	return nil
}

func declareSchema(m *mesh.Model, w *ply.Writer, useLayers bool, opts PLYOptions) error {
	var err error
	for _, c := range opts.Comments {
		err = multierr.Append(err, w.AddComment(c))
	}
	for _, info := range opts.ObjInfo {
		err = multierr.Append(err, w.AddObjInfo(info))
	}

	err = multierr.Combine(err,
		w.AddElement(plyVertex, len(m.Vertices)),
		w.AddScalarProperty("x", ply.Float32),
		w.AddScalarProperty("y", ply.Float32),
		w.AddScalarProperty("z", ply.Float32),
		w.AddElement(plyFace, len(m.Faces)),
		w.AddListProperty(plyVertexIndices, ply.Uint8, ply.Int32),
	)
	if !useLayers {
		return err
	}

	return multierr.Combine(err,
		w.AddScalarProperty(plyLayerID, ply.Int32),
		w.AddElement(plyLayer, len(m.Layers)),
		w.AddListProperty(plyLayerName, ply.Uint8, ply.Uint8),
	)
}

func encodeLayerNames(layers []mesh.Layer, opts PLYOptions) ([][]byte, error) {
	names := make([][]byte, len(layers))
	for i, l := range layers {
		b, err := opts.LayerEncoding.Encode(l.Name)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if len(b) > maxLayerNameLen {
			return nil, fmt.Errorf("%w: layer %d name is %d bytes, limit %d",
				ply.ErrValueRange, i, len(b), maxLayerNameLen)
		}
		names[i] = b
	}
	return names, nil
}

func writeValues(w *ply.Writer, values ...float64) error {
	for _, v := range values {
		if err := w.Write(v); err != nil {
			return err
		}
	}
	return nil
}
