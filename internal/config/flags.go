package config

import (
	"flag"
	"strconv"
)

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile      = flag.String("log-file", "", "Also write logs to this file")
	flagZeroNormal   = flag.String("zero-normal", "", "Averaged normal that cancels out: first_loop or zero")

	flagSplitNormals optionalBool
)

func init() {
	flag.Var(&flagSplitNormals, "split-normals", "Export averaged per-loop normals (default true)")
}

// optionalBool is a boolean flag that remembers whether it was given, so
// -split-normals=false can override a config file.
type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) String() string {
	return strconv.FormatBool(b.value)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if flagSplitNormals.set {
		cfg.Export.SplitNormals = flagSplitNormals.value
	}
	if *flagZeroNormal != "" {
		cfg.Export.ZeroNormal = *flagZeroNormal
	}
}
