package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Faultbox/plymesh/pkg/encoding"
	"github.com/Faultbox/plymesh/pkg/math"
	"github.com/Faultbox/plymesh/pkg/mesh"
	"github.com/Faultbox/plymesh/pkg/ply"
)

// testPolygon is a face of any size with an optional layer tag.
type testPolygon struct {
	corners []int32
	layer   int32
}

// createTestMeshPLY builds a binary big-endian mesh file by hand. layer_id is
// written when withLayers is set, before vertex_indices if layerFirst is set.
func createTestMeshPLY(vertices [][3]float32, faces []testPolygon, layers []string, withLayers, layerFirst bool) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("ply\nformat binary_big_endian 1.0\n")
	buf.WriteString("element vertex " + strconv.Itoa(len(vertices)) + "\n")
	buf.WriteString("property float x\nproperty float y\nproperty float z\n")
	buf.WriteString("element face " + strconv.Itoa(len(faces)) + "\n")
	if withLayers && layerFirst {
		buf.WriteString("property int layer_id\n")
	}
	buf.WriteString("property list uchar int vertex_indices\n")
	if withLayers && !layerFirst {
		buf.WriteString("property int layer_id\n")
	}
	if withLayers {
		buf.WriteString("element layer " + strconv.Itoa(len(layers)) + "\n")
		buf.WriteString("property list uchar uchar layer_name\n")
	}
	buf.WriteString("end_header\n")

	for _, v := range vertices {
		binary.Write(buf, binary.BigEndian, v)
	}
	for _, f := range faces {
		if withLayers && layerFirst {
			binary.Write(buf, binary.BigEndian, f.layer)
		}
		buf.WriteByte(byte(len(f.corners)))
		binary.Write(buf, binary.BigEndian, f.corners)
		if withLayers && !layerFirst {
			binary.Write(buf, binary.BigEndian, f.layer)
		}
	}
	if withLayers {
		for _, name := range layers {
			buf.WriteByte(byte(len(name)))
			buf.WriteString(name)
		}
	}
	return buf.Bytes()
}

var squareVertices = [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0.5, 2, 0}}

func writeTestFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.ply")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func sampleModel() *mesh.Model {
	return &mesh.Model{
		Vertices: []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Faces:    []mesh.Face{{0, 1, 2}},
	}
}

func TestExportPLY_Scenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triangle.ply")
	if err := ExportPLY(sampleModel(), path); err != nil {
		t.Fatalf("ExportPLY failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}

	wantHeader := "ply\n" +
		"format binary_big_endian 1.0\n" +
		"element vertex 3\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"element face 1\n" +
		"property list uchar int vertex_indices\n" +
		"end_header\n"
	if !bytes.HasPrefix(data, []byte(wantHeader)) {
		t.Fatalf("unexpected header:\n%s", data)
	}

	body := new(bytes.Buffer)
	binary.Write(body, binary.BigEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	body.WriteByte(3)
	binary.Write(body, binary.BigEndian, [3]int32{0, 1, 2})
	if got := data[len(wantHeader):]; !bytes.Equal(got, body.Bytes()) {
		t.Errorf("unexpected body:\n got %v\nwant %v", got, body.Bytes())
	}

	var m mesh.Model
	if err := ImportPLY(&m, path); err != nil {
		t.Fatalf("ImportPLY failed: %v", err)
	}
	want := sampleModel()
	if len(m.Vertices) != 3 || len(m.Faces) != 1 {
		t.Fatalf("expected 3 vertices and 1 face, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	for i := range want.Vertices {
		if m.Vertices[i] != want.Vertices[i] {
			t.Errorf("vertex %d: got %v, want %v", i, m.Vertices[i], want.Vertices[i])
		}
	}
	if m.Faces[0] != (mesh.Face{0, 1, 2}) {
		t.Errorf("expected face (0,1,2), got %v", m.Faces[0])
	}
	if len(m.FaceLayers) != 0 || len(m.Layers) != 0 {
		t.Error("expected no layer data")
	}
}

func TestRoundTrip_Triangles(t *testing.T) {
	src := &mesh.Model{
		Vertices: []math.Vec3{{X: 0.1, Y: -2.5, Z: 3}, {X: 1e6, Y: 0, Z: -0.001}, {X: 7, Y: 8, Z: 9}, {X: 1, Y: 1, Z: 1}},
		Faces:    []mesh.Face{{0, 1, 2}, {2, 3, 0}, {3, 1, 2}},
	}

	for _, format := range []ply.Format{ply.FormatBinaryBigEndian, ply.FormatBinaryLittleEndian, ply.FormatASCII} {
		t.Run(format.String(), func(t *testing.T) {
			opts := DefaultPLYOptions()
			opts.Format = format

			path := filepath.Join(t.TempDir(), "mesh.ply")
			if err := ExportPLYWithOptions(src, path, opts); err != nil {
				t.Fatalf("export failed: %v", err)
			}

			var got mesh.Model
			if err := ImportPLYWithOptions(&got, path, opts); err != nil {
				t.Fatalf("import failed: %v", err)
			}

			if len(got.Vertices) != len(src.Vertices) {
				t.Fatalf("expected %d vertices, got %d", len(src.Vertices), len(got.Vertices))
			}
			for i := range src.Vertices {
				if got.Vertices[i] != src.Vertices[i] {
					t.Errorf("vertex %d: got %v, want %v", i, got.Vertices[i], src.Vertices[i])
				}
			}
			if len(got.Faces) != len(src.Faces) {
				t.Fatalf("expected %d faces, got %d", len(src.Faces), len(got.Faces))
			}
			for i := range src.Faces {
				if got.Faces[i] != src.Faces[i] {
					t.Errorf("face %d: got %v, want %v", i, got.Faces[i], src.Faces[i])
				}
			}
		})
	}
}

func TestRoundTrip_Layers(t *testing.T) {
	src := sampleModel()
	src.Faces = append(src.Faces, mesh.Face{2, 1, 0}, mesh.Face{0, 2, 1})
	src.FaceLayers = []int{1, 0, 1}
	src.Layers = []mesh.Layer{{Name: "floor"}, {Name: "wall_north"}}

	var buf bytes.Buffer
	if err := WritePLY(src, &buf, DefaultPLYOptions()); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}

	var got mesh.Model
	if err := ReadPLY(&got, &buf, DefaultPLYOptions()); err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}

	if len(got.FaceLayers) != 3 {
		t.Fatalf("expected 3 face layers, got %v", got.FaceLayers)
	}
	for i, want := range src.FaceLayers {
		if got.FaceLayers[i] != want {
			t.Errorf("face layer %d: got %d, want %d", i, got.FaceLayers[i], want)
		}
	}
	if len(got.Layers) != 2 || got.Layers[0].Name != "floor" || got.Layers[1].Name != "wall_north" {
		t.Errorf("unexpected layers: %+v", got.Layers)
	}
}

func TestImportPLY_QuadSplit(t *testing.T) {
	data := createTestMeshPLY(squareVertices, []testPolygon{
		{corners: []int32{0, 1, 2, 3}},
	}, nil, false, false)

	var m mesh.Model
	if err := ImportPLY(&m, writeTestFile(t, data)); err != nil {
		t.Fatalf("ImportPLY failed: %v", err)
	}

	want := []mesh.Face{{0, 1, 2}, {0, 2, 3}}
	if len(m.Faces) != len(want) {
		t.Fatalf("expected %d faces, got %v", len(want), m.Faces)
	}
	for i := range want {
		if m.Faces[i] != want[i] {
			t.Errorf("face %d: got %v, want %v", i, m.Faces[i], want[i])
		}
	}
	if len(m.FaceLayers) != 0 {
		t.Errorf("expected no face layers, got %v", m.FaceLayers)
	}
}

func TestImportPLY_QuadLayerDuplication(t *testing.T) {
	for _, layerFirst := range []bool{false, true} {
		name := "layer_id after vertex_indices"
		if layerFirst {
			name = "layer_id before vertex_indices"
		}
		t.Run(name, func(t *testing.T) {
			data := createTestMeshPLY(squareVertices, []testPolygon{
				{corners: []int32{0, 1, 3}, layer: 0},
				{corners: []int32{1, 2, 3, 0}, layer: 1},
				{corners: []int32{2, 3, 4}, layer: 0},
			}, []string{"ground", "roof"}, true, layerFirst)

			var m mesh.Model
			if err := ImportPLY(&m, writeTestFile(t, data)); err != nil {
				t.Fatalf("ImportPLY failed: %v", err)
			}

			wantFaces := []mesh.Face{{0, 1, 3}, {1, 2, 3}, {1, 3, 0}, {2, 3, 4}}
			wantLayers := []int{0, 1, 1, 0}
			if len(m.Faces) != len(wantFaces) || len(m.FaceLayers) != len(wantLayers) {
				t.Fatalf("got faces %v layers %v", m.Faces, m.FaceLayers)
			}
			for i := range wantFaces {
				if m.Faces[i] != wantFaces[i] {
					t.Errorf("face %d: got %v, want %v", i, m.Faces[i], wantFaces[i])
				}
				if m.FaceLayers[i] != wantLayers[i] {
					t.Errorf("face layer %d: got %d, want %d", i, m.FaceLayers[i], wantLayers[i])
				}
			}
			if len(m.Layers) != 2 || m.Layers[0].Name != "ground" || m.Layers[1].Name != "roof" {
				t.Errorf("unexpected layers: %+v", m.Layers)
			}
			if !m.HasLayers() {
				t.Error("expected imported model to have complete layer data")
			}
		})
	}
}

func TestImportPLY_PolygonFan(t *testing.T) {
	data := createTestMeshPLY(squareVertices, []testPolygon{
		{corners: []int32{0, 1, 2, 4, 3}, layer: 2},
	}, []string{"a", "b", "c"}, true, false)

	var m mesh.Model
	if err := ImportPLY(&m, writeTestFile(t, data)); err != nil {
		t.Fatalf("ImportPLY failed: %v", err)
	}

	want := []mesh.Face{{0, 1, 2}, {0, 2, 4}, {0, 4, 3}}
	if len(m.Faces) != len(want) {
		t.Fatalf("expected %d faces, got %v", len(want), m.Faces)
	}
	for i := range want {
		if m.Faces[i] != want[i] {
			t.Errorf("face %d: got %v, want %v", i, m.Faces[i], want[i])
		}
		if m.FaceLayers[i] != 2 {
			t.Errorf("face layer %d: got %d, want 2", i, m.FaceLayers[i])
		}
	}
}

func TestExportPLY_PartialLayerDropout(t *testing.T) {
	src := sampleModel()
	src.Layers = []mesh.Layer{{Name: "orphan"}}
	src.FaceLayers = []int{0, 0}

	var buf bytes.Buffer
	if err := WritePLY(src, &buf, DefaultPLYOptions()); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}

	header, _, _ := strings.Cut(buf.String(), "end_header\n")
	if strings.Contains(header, "layer_id") {
		t.Error("header should not declare layer_id")
	}
	if strings.Contains(header, "element layer") {
		t.Error("header should not declare the layer element")
	}

	var got mesh.Model
	if err := ReadPLY(&got, &buf, DefaultPLYOptions()); err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}
	if len(got.Faces) != 1 || len(got.Layers) != 0 || len(got.FaceLayers) != 0 {
		t.Errorf("unexpected model: %+v", got)
	}
}

func TestImportPLY_OpenFailure(t *testing.T) {
	m := sampleModel()
	m.FaceLayers = []int{0}
	m.Layers = []mesh.Layer{{Name: "kept"}}

	err := ImportPLY(m, filepath.Join(t.TempDir(), "missing.ply"))
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}

	if len(m.Vertices) != 0 || len(m.Faces) != 0 {
		t.Error("vertices and faces should be cleared before opening")
	}
	if len(m.FaceLayers) != 1 || len(m.Layers) != 1 || m.Layers[0].Name != "kept" {
		t.Errorf("layer data should be untouched, got %v %v", m.FaceLayers, m.Layers)
	}
}

func TestImportPLY_LayersAccumulate(t *testing.T) {
	data := createTestMeshPLY(squareVertices, []testPolygon{
		{corners: []int32{0, 1, 2}, layer: 0},
	}, []string{"second"}, true, false)
	path := writeTestFile(t, data)

	m := &mesh.Model{Layers: []mesh.Layer{{Name: "first"}}}
	if err := ImportPLY(m, path); err != nil {
		t.Fatalf("ImportPLY failed: %v", err)
	}
	if len(m.Layers) != 2 || m.Layers[0].Name != "first" || m.Layers[1].Name != "second" {
		t.Errorf("expected layers to accumulate, got %+v", m.Layers)
	}

	opts := DefaultPLYOptions()
	opts.ClearLayers = true
	if err := ImportPLYWithOptions(m, path, opts); err != nil {
		t.Fatalf("ImportPLYWithOptions failed: %v", err)
	}
	if len(m.Layers) != 1 || m.Layers[0].Name != "second" {
		t.Errorf("expected layers to be replaced, got %+v", m.Layers)
	}
	if len(m.FaceLayers) != 1 {
		t.Errorf("expected 1 face layer, got %v", m.FaceLayers)
	}
}

func TestImportPLY_HeaderFailure(t *testing.T) {
	path := writeTestFile(t, []byte("ply\nformat binary_big_endian 1.0\nelement vertex x\nend_header\n"))

	var m mesh.Model
	err := ImportPLY(&m, path)
	if !errors.Is(err, ply.ErrInvalidHeader) {
		t.Errorf("expected ply.ErrInvalidHeader, got %v", err)
	}
	if errors.Is(err, ErrParse) {
		t.Error("header failure should not be reported as a parse failure")
	}

	path = writeTestFile(t, []byte("solid cube\nendsolid cube\n"))
	if err := ImportPLY(&m, path); !errors.Is(err, ply.ErrNotPLY) {
		t.Errorf("expected ply.ErrNotPLY, got %v", err)
	}
}

func TestImportPLY_TruncatedBody(t *testing.T) {
	data := createTestMeshPLY(squareVertices, []testPolygon{
		{corners: []int32{0, 1, 2}},
		{corners: []int32{0, 2, 3}},
	}, nil, false, false)

	var m mesh.Model
	err := ImportPLY(&m, writeTestFile(t, data[:len(data)-3]))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !errors.Is(err, ply.ErrTruncatedData) {
		t.Errorf("expected wrapped ply.ErrTruncatedData, got %v", err)
	}

	if len(m.Vertices) != len(squareVertices) {
		t.Errorf("expected vertices read before the failure to remain, got %d", len(m.Vertices))
	}
	if len(m.Faces) != 1 {
		t.Errorf("expected the complete first face to remain, got %v", m.Faces)
	}
}

func TestImportPLY_ASCII(t *testing.T) {
	data := `ply
format ascii 1.0
comment hand written
element vertex 4
property float x
property float y
property float z
property uchar red
element face 1
property list uchar int vertex_indices
property int layer_id
element layer 1
property list uchar uchar layer_name
end_header
0 0 0 255
1.5 0 0 255
1.5 2.25 0 255
0 2.25 0 255
4 0 1 2 3 0
4 114 111 111 102
`
	var m mesh.Model
	if err := ReadPLY(&m, strings.NewReader(data), DefaultPLYOptions()); err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}

	if len(m.Vertices) != 4 || m.Vertices[2] != (math.Vec3{X: 1.5, Y: 2.25, Z: 0}) {
		t.Errorf("unexpected vertices: %v", m.Vertices)
	}
	if len(m.Faces) != 2 || m.Faces[1] != (mesh.Face{0, 2, 3}) {
		t.Errorf("unexpected faces: %v", m.Faces)
	}
	if len(m.FaceLayers) != 2 || m.FaceLayers[0] != 0 || m.FaceLayers[1] != 0 {
		t.Errorf("unexpected face layers: %v", m.FaceLayers)
	}
	if len(m.Layers) != 1 || m.Layers[0].Name != "roof" {
		t.Errorf("unexpected layers: %+v", m.Layers)
	}
}

func TestImportPLY_MissingCoordinate(t *testing.T) {
	data := "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float z\nend_header\n1 2\n3 4\n"

	var m mesh.Model
	if err := ReadPLY(&m, strings.NewReader(data), DefaultPLYOptions()); err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}
	want := []math.Vec3{{X: 1, Y: 0, Z: 2}, {X: 3, Y: 0, Z: 4}}
	if len(m.Vertices) != 2 || m.Vertices[0] != want[0] || m.Vertices[1] != want[1] {
		t.Errorf("got %v, want %v", m.Vertices, want)
	}
}

func TestParsingContext_LastFaceWasSplit(t *testing.T) {
	data := createTestMeshPLY(squareVertices, []testPolygon{
		{corners: []int32{0, 1, 2, 3}},
		{corners: []int32{0, 1, 2}},
	}, nil, false, false)

	r := ply.NewReader(bytes.NewReader(data))
	if err := r.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}

	var m mesh.Model
	ctx := newParsingContext(&m, encoding.Codec{})
	ctx.register(r)

	var splits []bool
	r.SetElementEndCallback(plyFace, func(element string, instance int) error {
		if err := ctx.endFace(element, instance); err != nil {
			return err
		}
		splits = append(splits, ctx.lastFaceWasSplit)
		return nil
	})

	if err := r.Read(); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(splits) != 2 || !splits[0] || splits[1] {
		t.Errorf("expected split flags [true false], got %v", splits)
	}
	if len(m.Faces) != 3 {
		t.Errorf("expected 3 triangles, got %v", m.Faces)
	}
}

func TestLayerEncoding(t *testing.T) {
	codec, err := encoding.Lookup(encoding.Latin1)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	opts := DefaultPLYOptions()
	opts.LayerEncoding = codec

	src := sampleModel()
	src.FaceLayers = []int{0}
	src.Layers = []mesh.Layer{{Name: "béton"}}

	var buf bytes.Buffer
	if err := WritePLY(src, &buf, opts); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte{5, 'b', 0xe9, 't', 'o', 'n'}) {
		t.Errorf("expected Latin-1 layer name at end of file, got %v", buf.Bytes())
	}

	var got mesh.Model
	if err := ReadPLY(&got, &buf, opts); err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}
	if len(got.Layers) != 1 || got.Layers[0].Name != "béton" {
		t.Errorf("unexpected layers: %+v", got.Layers)
	}
}

func TestExportPLY_LayerNameTooLong(t *testing.T) {
	src := sampleModel()
	src.FaceLayers = []int{0}
	src.Layers = []mesh.Layer{{Name: strings.Repeat("x", 256)}}

	path := filepath.Join(t.TempDir(), "long.ply")
	if err := os.WriteFile(path, []byte("previous"), 0644); err != nil {
		t.Fatalf("failed to write existing file: %v", err)
	}
	if err := ExportPLY(src, path); !errors.Is(err, ply.ErrValueRange) {
		t.Errorf("expected ply.ErrValueRange, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read existing file: %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("existing file was modified: %q", data)
	}

	missing := filepath.Join(t.TempDir(), "never.ply")
	if err := ExportPLY(src, missing); !errors.Is(err, ply.ErrValueRange) {
		t.Errorf("expected ply.ErrValueRange, got %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("expected no file to be created, stat returned %v", err)
	}
}

func TestExportPLY_CreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "out.ply")
	if err := ExportPLY(sampleModel(), path); !errors.Is(err, ErrCreate) {
		t.Errorf("expected ErrCreate, got %v", err)
	}
}

func TestExportPLY_Comments(t *testing.T) {
	opts := DefaultPLYOptions()
	opts.Comments = []string{"exported by plytool"}

	var buf bytes.Buffer
	if err := WritePLY(sampleModel(), &buf, opts); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "ply\nformat binary_big_endian 1.0\ncomment exported by plytool\n") {
		t.Errorf("comment missing from header:\n%s", buf.String())
	}
}

func TestExportPLY_ObjInfo(t *testing.T) {
	opts := DefaultPLYOptions()
	opts.Comments = []string{"exported by plytool"}
	opts.ObjInfo = []string{"units m"}

	var buf bytes.Buffer
	if err := WritePLY(sampleModel(), &buf, opts); err != nil {
		t.Fatalf("WritePLY failed: %v", err)
	}
	want := "ply\nformat binary_big_endian 1.0\ncomment exported by plytool\nobj_info units m\nelement vertex 3\n"
	if !strings.HasPrefix(buf.String(), want) {
		t.Errorf("obj_info missing from header:\n%s", buf.String())
	}

	r := ply.NewReader(&buf)
	if err := r.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if info := r.Header().ObjInfo; len(info) != 1 || info[0] != "units m" {
		t.Errorf("unexpected obj_info: %v", info)
	}
}

var errDiskFull = errors.New("disk full")

// failingWriter accepts limit bytes and then fails every write.
type failingWriter struct {
	limit int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) <= w.limit {
		w.limit -= len(p)
		return len(p), nil
	}
	n := w.limit
	w.limit = 0
	return n, errDiskFull
}

func TestWritePLY_WriterFailure(t *testing.T) {
	large := &mesh.Model{}
	for i := 0; i < 2000; i++ {
		large.Vertices = append(large.Vertices, math.Vec3{X: float32(i)})
	}
	for i := 0; i+2 < len(large.Vertices); i += 3 {
		large.Faces = append(large.Faces, mesh.Face{i, i + 1, i + 2})
	}

	tests := []struct {
		name  string
		model *mesh.Model
		limit int
	}{
		// Fits in the write buffer, so the failure surfaces on flush
		{"flush", sampleModel(), 0},
		// Overflows the write buffer while values are written
		{"write", large, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := WritePLY(tc.model, &failingWriter{limit: tc.limit}, DefaultPLYOptions())
			if !errors.Is(err, errDiskFull) {
				t.Errorf("expected write error, got %v", err)
			}
		})
	}
}

func TestReadPLY_MalformedListLength(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"ascii layer name", "ply\nformat ascii 1.0\nelement layer 1\nproperty list uchar uchar layer_name\nend_header\n1e18\n"},
		{"ascii face", "ply\nformat ascii 1.0\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n1e18\n"},
		{"ascii layer bytes out of range", "ply\nformat ascii 1.0\nelement layer 1\nproperty list uchar uchar layer_name\nend_header\n2 300 -1\n"},
		{"binary layer name", "ply\nformat binary_big_endian 1.0\nelement layer 1\nproperty list uint uchar layer_name\nend_header\n\xff\xff\xff\xffab"},
		{"binary face", "ply\nformat binary_big_endian 1.0\nelement face 1\nproperty list uint int vertex_indices\nend_header\n\xff\xff\xff\xff\x00\x00\x00\x01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m mesh.Model
			err := ReadPLY(&m, strings.NewReader(tc.data), DefaultPLYOptions())
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
			if len(m.Faces) != 0 || len(m.Layers) != 0 {
				t.Errorf("expected nothing committed, got faces=%v layers=%+v", m.Faces, m.Layers)
			}
		})
	}
}
