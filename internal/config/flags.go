package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagFormat      = flag.String("format", "", "Output format: ascii, binary_little_endian, binary_big_endian")
	flagEncoding    = flag.String("encoding", "", "Layer name encoding: raw, latin1, windows-1252, euc-kr, shift-jis")
	flagClearLayers = flag.Bool("clear-layers", false, "Clear layer data before import")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments remaining after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagEncoding != "" {
		cfg.Layers.Encoding = *flagEncoding
	}
	if *flagClearLayers {
		cfg.Import.ClearLayers = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
