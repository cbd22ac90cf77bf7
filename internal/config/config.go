package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kvstore/internal/address"
)

// Config holds one node's cluster configuration, loaded from a YAML file
// (§6). Self and Introducer are written in "id:port" form, the same
// textual shape used on the wire (address.String/Parse).
type Config struct {
	SelfAddr       string `yaml:"self"`
	IntroducerAddr string `yaml:"introducer"`
}

// Load reads and parses a YAML cluster config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.SelfAddr == "" {
		return nil, fmt.Errorf("config: %s: \"self\" is required", path)
	}
	return &cfg, nil
}

// Self parses the node's own address.
func (c *Config) Self() (address.Address, error) {
	a, err := address.Parse(c.SelfAddr)
	if err != nil {
		return address.Address{}, fmt.Errorf("config: self: %w", err)
	}
	return a, nil
}

// Introducer parses the bootstrap introducer's address. An empty
// "introducer" field means this node is the introducer itself.
func (c *Config) Introducer() (address.Address, error) {
	if c.IntroducerAddr == "" {
		return address.Introducer, nil
	}
	a, err := address.Parse(c.IntroducerAddr)
	if err != nil {
		return address.Address{}, fmt.Errorf("config: introducer: %w", err)
	}
	return a, nil
}
