// Package config handles r3dtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	SplitNormals bool   `yaml:"split_normals"` // Average per-loop normals instead of stored vertex normals
	ZeroNormal   string `yaml:"zero_normal"`   // "first_loop" or "zero"
	Object       string `yaml:"object"`        // Object to export, empty for the first one
}

// ImportConfig holds mesh import settings.
type ImportConfig struct {
	Collection string `yaml:"collection"` // Empty uses the file name
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
			SplitNormals: true,
			ZeroNormal:   "first_loop",
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}
