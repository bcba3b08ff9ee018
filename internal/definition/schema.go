package definition

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the root of a definition document.
type File struct {
	Version  string      `yaml:"version" toml:"version" json:"version"`
	Requires string      `yaml:"requires,omitempty" toml:"requires,omitempty" json:"requires,omitempty"`
	Targets  []TargetDef `yaml:"targets" toml:"targets" json:"targets"`
}

// TargetDef declares one target.
type TargetDef struct {
	Name   string     `yaml:"name" toml:"name" json:"name"`
	Kind   string     `yaml:"kind,omitempty" toml:"kind,omitempty" json:"kind,omitempty"`
	Fields []FieldDef `yaml:"fields" toml:"fields" json:"fields"`
}

// FieldDef declares one hint.
type FieldDef struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Marks    Specs  `yaml:"marks,omitempty" toml:"marks,omitempty" json:"marks,omitempty"`
	Optional bool   `yaml:"optional,omitempty" toml:"optional,omitempty" json:"optional,omitempty"`
	Default  any    `yaml:"default,omitempty" toml:"default,omitempty" json:"default,omitempty"`
}

// Specs is a list of marker specs, written either as one string or as a
// list of strings.
type Specs []string

// Joined is the specs as one spec string.
func (s Specs) Joined() string {
	return strings.Join(s, "; ")
}

// UnmarshalYAML accepts a single string or a sequence of strings.
func (s *Specs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		if err := node.Decode(&str); err != nil {
			return err
		}

		*s = specsOf(str)

		return nil

	case yaml.SequenceNode:
		var arr []string

		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("marks: expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML writes a single spec as a plain string.
func (s Specs) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalTOML accepts a single string or an array of strings.
func (s *Specs) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*s = specsOf(v)
		return nil
	case []any:
		out := make(Specs, 0, len(v))

		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("marks: expected strings, got %T", item)
			}

			out = append(out, str)
		}

		*s = out

		return nil
	default:
		return fmt.Errorf("marks: expected string or array, got %T", data)
	}
}

func specsOf(str string) Specs {
	if strings.TrimSpace(str) == "" {
		return Specs{}
	}

	return Specs{str}
}
