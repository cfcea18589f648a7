// Package zkconfig loads optional YAML configuration for the scanner and
// CLI, grounded on the teacher's functional-options config style but backed
// by a real file format (gopkg.in/yaml.v3) the way glennswest-ipmiserial's
// config package loads its own settings.
package zkconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScanConfig overrides the scanner's defaults: which subnets to probe, which
// ports count as "likely ZKTeco", and how long to wait per first-stage
// ZKTeco-port dial. The second-stage dials and the device-info fetch keep
// their fixed timeouts.
type ScanConfig struct {
	Subnets      []string      `yaml:"subnets"`
	ZKTecoPorts  []int         `yaml:"zkteco_ports"`
	OtherPorts   []int         `yaml:"other_ports"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// Config is the root document a zkattendctl --config file may supply.
type Config struct {
	LogLevel  string     `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	Password  uint32     `yaml:"password"`
	Scan      ScanConfig `yaml:"scan"`
}

// Default returns a Config with the same defaults Client and scanner.Scan
// use when no file is supplied.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Scan: ScanConfig{
			ZKTecoPorts:  []int{4370, 4360, 5005, 5010, 89},
			OtherPorts:   []int{80, 8080, 443, 8443},
			ProbeTimeout: 300 * time.Millisecond,
		},
	}
}

// Load reads and parses a YAML config file at path, starting from Default
// so a file only needs to specify the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
