package config

import (
	"fmt"
	"os"

	"journeymap/domain/layout"
	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML overlay for settings that are tuned rather than
// deployed. Layout is merged field by field over the defaults.
//
//	layout:
//	  circular_radius: 80
//	  lane_ordering: extraction
//	extraction:
//	  intersection_policy: derive
//	  max_buffer_bytes: 2097152
//	history_limit: 100
type FileConfig struct {
	Layout     layout.Settings `yaml:"layout"`
	Extraction struct {
		IntersectionPolicy string `yaml:"intersection_policy"`
		MaxBufferBytes     int    `yaml:"max_buffer_bytes"`
	} `yaml:"extraction"`
	HistoryLimit int `yaml:"history_limit"`
}

// LoadFile reads a YAML config file. Layout keys missing from the file keep
// their default values.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes YAML config data
func ParseFile(data []byte) (*FileConfig, error) {
	fc := &FileConfig{Layout: layout.DefaultSettings()}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fc, nil
}

// ApplyFile overlays the file settings on the config
func (c *Config) ApplyFile(fc *FileConfig) {
	c.Layout = fc.Layout
	if fc.Extraction.IntersectionPolicy != "" {
		c.IntersectionPolicy = fc.Extraction.IntersectionPolicy
	}
	if fc.Extraction.MaxBufferBytes > 0 {
		c.MaxBufferBytes = fc.Extraction.MaxBufferBytes
	}
	if fc.HistoryLimit > 0 {
		c.HistoryLimit = fc.HistoryLimit
	}
}
