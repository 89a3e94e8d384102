package config

import "github.com/povarna/pet-poison-map/internal/textsafety"

// PoliciesConfig represents the complete moderation policy configuration
type PoliciesConfig struct {
	Policies []PolicyConfiguration `yaml:"policies"`
}

// PolicyConfiguration is one named policy. Check flags default to true when
// omitted.
type PolicyConfiguration struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	MinLen       int    `yaml:"min_len"`
	MaxLen       int    `yaml:"max_len"`
	CheckContact *bool  `yaml:"check_contact"`
	CheckThreat  *bool  `yaml:"check_threat"`
}

func (p PolicyConfiguration) Policy() textsafety.Policy {
	return textsafety.Policy{
		MinLen:       p.MinLen,
		MaxLen:       p.MaxLen,
		CheckContact: p.CheckContact == nil || *p.CheckContact,
		CheckThreat:  p.CheckThreat == nil || *p.CheckThreat,
	}
}
