package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/povarna/pet-poison-map/internal/textsafety"
	"go.yaml.in/yaml/v3"
)

const (
	PolicyTitle   = "title"
	PolicyComment = "comment"
)

// LoadPoliciesConfig reads POLICIES_CONFIG_PATH (default
// configs/policies.yaml). A missing file yields the built-in presets.
func LoadPoliciesConfig() (*PoliciesConfig, error) {
	path := os.Getenv("POLICIES_CONFIG_PATH")
	if path == "" {
		path = "configs/policies.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultPoliciesConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg PoliciesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policies config %s: %w", path, err)
	}

	return &cfg, nil
}

// DefaultPoliciesConfig returns the title and comment presets.
func DefaultPoliciesConfig() *PoliciesConfig {
	return &PoliciesConfig{
		Policies: []PolicyConfiguration{
			fromPolicy(PolicyTitle, "Incident title", textsafety.TitlePolicy),
			fromPolicy(PolicyComment, "Incident comment", textsafety.CommentPolicy),
		},
	}
}

func fromPolicy(name string, description string, p textsafety.Policy) PolicyConfiguration {
	checkContact, checkThreat := p.CheckContact, p.CheckThreat
	return PolicyConfiguration{
		Name:         name,
		Description:  description,
		MinLen:       p.MinLen,
		MaxLen:       p.MaxLen,
		CheckContact: &checkContact,
		CheckThreat:  &checkThreat,
	}
}

// applyDefaults adds any missing preset so title and comment always resolve.
func applyDefaults(cfg *PoliciesConfig) {
	for _, preset := range DefaultPoliciesConfig().Policies {
		if _, ok := cfg.find(preset.Name); !ok {
			cfg.Policies = append(cfg.Policies, preset)
		}
	}
}

func (c *PoliciesConfig) Validate() error {
	if len(c.Policies) == 0 {
		return fmt.Errorf("no policies configured")
	}

	seen := make(map[string]bool, len(c.Policies))
	for i, p := range c.Policies {
		if p.Name == "" {
			return fmt.Errorf("policy at index %d: missing name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate policy name: %s", p.Name)
		}
		seen[p.Name] = true

		if p.MinLen < 0 || p.MaxLen < 0 {
			return fmt.Errorf("policy %s: negative length bound", p.Name)
		}
		if p.MinLen > p.MaxLen {
			return fmt.Errorf("policy %s: min_len %d greater than max_len %d", p.Name, p.MinLen, p.MaxLen)
		}
	}

	for _, required := range []string{PolicyTitle, PolicyComment} {
		if !seen[required] {
			return fmt.Errorf("missing required policy: %s", required)
		}
	}

	return nil
}

// Lookup resolves a policy by name.
func (c *PoliciesConfig) Lookup(name string) (textsafety.Policy, bool) {
	p, ok := c.find(name)
	if !ok {
		return textsafety.Policy{}, false
	}
	return p.Policy(), true
}

func (c *PoliciesConfig) Names() []string {
	names := make([]string, 0, len(c.Policies))
	for _, p := range c.Policies {
		names = append(names, p.Name)
	}
	return names
}

func (c *PoliciesConfig) find(name string) (PolicyConfiguration, bool) {
	for _, p := range c.Policies {
		if p.Name == name {
			return p, true
		}
	}
	return PolicyConfiguration{}, false
}
