// plytool is a CLI utility for inspecting and converting PLY mesh files.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/plymesh/internal/config"
	"github.com/Faultbox/plymesh/internal/logger"
	"github.com/Faultbox/plymesh/pkg/formats"
	"github.com/Faultbox/plymesh/pkg/mesh"
	"github.com/Faultbox/plymesh/pkg/ply"
)

var cfg *config.Config

func main() {
	config.ParseFlags()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "stats":
		cmdStats(args)
	case "layers":
		cmdLayers(args)
	case "check":
		cmdCheck(args)
	case "convert":
		cmdConvert(args)
	case "config":
		cmdConfig(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`plytool - PLY mesh utility

Usage:
  plytool [flags] <command> [args]

Commands:
  info <file.ply>           Show header information
  stats <file.ply>          Show vertex and face counts and bounds
  layers <file.ply>         List layers with their face counts
  check <file.ply>          Validate face indices and report degenerate faces
  convert <in.ply> <out.ply> Re-export a mesh as triangles
  config [save|path]        Print the effective config, or save it

Flags:
  -config <path>            Config file
  -format <name>            ascii, binary_little_endian, binary_big_endian
  -encoding <name>          Layer name encoding (raw, latin1, windows-1252, euc-kr, shift-jis)
  -clear-layers             Clear layer data before import
  -debug                    Enable debug logging
  -log-file <path>          Write logs to this file

Examples:
  plytool info model.ply
  plytool -format ascii convert model.ply model_ascii.ply
  plytool -encoding euc-kr layers map.ply`)
}

func exit(code int) {
	logger.Sync()
	os.Exit(code)
}

func fail(msg string, err error) {
	logger.Error(msg, zap.Error(err))
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exit(1)
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "Usage: plytool %s\n", usage)
		exit(1)
	}
}

func plyOptions() formats.PLYOptions {
	opts, err := cfg.PLYOptions()
	if err != nil {
		fail("invalid options", err)
	}
	return opts
}

func load(path string) *mesh.Model {
	m := &mesh.Model{}
	start := time.Now()
	if err := formats.ImportPLYWithOptions(m, path, plyOptions()); err != nil {
		fail("import failed", fmt.Errorf("%s: %w", path, err))
	}
	logger.Info("imported", logger.ModelFields(path, m, time.Since(start))...)
	return m
}

// readHeader reads only the header of the file at path.
func readHeader(path string) (*ply.Header, error) {
	r, err := ply.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := r.ReadHeader(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	h := r.Header()
	logger.Debug("header read",
		zap.String("path", path),
		zap.Stringer("format", h.Format),
		zap.Int("elements", len(h.Elements)))
	return h, nil
}

func cmdInfo(args []string) {
	requireArgs(args, 1, "info <file.ply>")

	h, err := readHeader(args[0])
	if err != nil {
		fail("reading header failed", err)
	}

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Format:  %s %s\n", h.Format, h.Version)
	for _, c := range h.Comments {
		fmt.Printf("Comment: %s\n", c)
	}
	for _, info := range h.ObjInfo {
		fmt.Printf("ObjInfo: %s\n", info)
	}
	fmt.Println()
	fmt.Println("Elements:")
	for _, e := range h.Elements {
		fmt.Printf("  %-10s %d\n", e.Name, e.Count)
		for _, p := range e.Properties {
			fmt.Printf("    %s\n", p)
		}
	}
}

func cmdStats(args []string) {
	requireArgs(args, 1, "stats <file.ply>")

	m := load(args[0])
	min, max := m.Bounds()
	center := min.Add(max).Scale(0.5)

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", len(m.Vertices))
	fmt.Printf("Faces:     %d\n", len(m.Faces))
	fmt.Printf("Layers:    %d\n", len(m.Layers))
	fmt.Printf("Layered:   %v\n", m.HasLayers())
	fmt.Printf("Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", min.X, min.Y, min.Z, max.X, max.Y, max.Z)
	fmt.Printf("Center:    (%g, %g, %g)\n", center.X, center.Y, center.Z)
}

func cmdLayers(args []string) {
	requireArgs(args, 1, "layers <file.ply>")

	m := load(args[0])
	if len(m.Layers) == 0 {
		fmt.Println("No layers")
		return
	}

	counts := m.LayerFaceCounts()
	for i, layer := range m.Layers {
		fmt.Printf("  %3d  %-32s %d faces\n", i, layer.Name, counts[i])
	}

	// Tags pointing past the layer table
	var orphans []int
	for idx := range counts {
		if idx < 0 || idx >= len(m.Layers) {
			orphans = append(orphans, idx)
		}
	}
	sort.Ints(orphans)
	for _, idx := range orphans {
		fmt.Printf("  %3d  %-32s %d faces\n", idx, "(missing)", counts[idx])
	}
}

func cmdCheck(args []string) {
	requireArgs(args, 1, "check <file.ply>")

	m := load(args[0])
	ok := true

	if err := m.Validate(); err != nil {
		fmt.Printf("Invalid: %v\n", err)
		ok = false
	}
	if len(m.Layers) > 0 && !m.HasLayers() {
		logger.Warn("layer tags do not cover all faces, layers will not be exported",
			zap.String("path", args[0]),
			zap.Int("face_layers", len(m.FaceLayers)),
			zap.Int("faces", len(m.Faces)))
	}

	degenerate := m.DegenerateFaces()
	if len(degenerate) > 0 {
		fmt.Printf("Degenerate faces: %d\n", len(degenerate))
		for i, idx := range degenerate {
			if i == 10 {
				fmt.Printf("  ... and %d more\n", len(degenerate)-i)
				break
			}
			fmt.Printf("  %d: %v\n", idx, m.Faces[idx])
		}
	}

	if !ok {
		exit(1)
	}
	fmt.Println("OK")
}

func cmdConvert(args []string) {
	requireArgs(args, 2, "convert <in.ply> <out.ply>")

	m := load(args[0])
	opts := plyOptions()

	// Carry obj_info lines of the source after the configured ones
	h, err := readHeader(args[0])
	if err != nil {
		fail("reading header failed", err)
	}
	opts.ObjInfo = append(opts.ObjInfo, h.ObjInfo...)

	start := time.Now()
	if err := formats.ExportPLYWithOptions(m, args[1], opts); err != nil {
		fail("export failed", fmt.Errorf("%s: %w", args[1], err))
	}
	logger.Info("exported", append(logger.ModelFields(args[1], m, time.Since(start)),
		zap.Stringer("format", opts.Format))...)

	fmt.Printf("Wrote %s (%s, %d vertices, %d faces)\n", args[1], opts.Format, len(m.Vertices), len(m.Faces))
}

func cmdConfig(args []string) {
	if len(args) > 0 && args[0] == "save" {
		if err := cfg.Save(); err != nil {
			fail("saving config failed", err)
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		return
	}
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			fail("saving config failed", err)
		}
		logger.Info("config saved", zap.String("path", args[0]))
		return
	}

	data, err := cfg.Marshal()
	if err != nil {
		fail("encoding config failed", err)
	}
	os.Stdout.Write(data)
}
