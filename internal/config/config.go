// Package config handles plytool configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/plymesh/pkg/encoding"
	"github.com/Faultbox/plymesh/pkg/formats"
	"github.com/Faultbox/plymesh/pkg/ply"
)

// Config holds all plytool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Import  ImportConfig  `yaml:"import"`
	Layers  LayersConfig  `yaml:"layers"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds settings for written PLY files.
type ExportConfig struct {
	Format   string   `yaml:"format"`   // ascii, binary_little_endian or binary_big_endian
	Comments []string `yaml:"comments"` // Header comment lines
	ObjInfo  []string `yaml:"obj_info"` // Header obj_info lines
}

// ImportConfig holds settings for reading PLY files.
type ImportConfig struct {
	ClearLayers bool `yaml:"clear_layers"`
}

// LayersConfig holds layer name settings.
type LayersConfig struct {
	Encoding string `yaml:"encoding"` // raw, latin1, windows-1252, euc-kr, shift-jis
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Format: ply.FormatBinaryBigEndian.String(),
		},
		Import: ImportConfig{
			ClearLayers: false,
		},
		Layers: LayersConfig{
			Encoding: encoding.Raw,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// PLYOptions converts the settings into codec options.
func (c *Config) PLYOptions() (formats.PLYOptions, error) {
	opts := formats.DefaultPLYOptions()

	format, err := ply.ParseFormat(c.Export.Format)
	if err != nil {
		return opts, fmt.Errorf("export.format: %w", err)
	}
	codec, err := encoding.Lookup(c.Layers.Encoding)
	if err != nil {
		return opts, fmt.Errorf("layers.encoding: %w", err)
	}

	opts.Format = format
	opts.LayerEncoding = codec
	opts.Comments = c.Export.Comments
	opts.ObjInfo = c.Export.ObjInfo
	opts.ClearLayers = c.Import.ClearLayers
	return opts, nil
}
