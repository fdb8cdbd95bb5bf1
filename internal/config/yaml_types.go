package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a single string or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringList{str}
		} else {
			*s = nil
		}

		return nil

	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}

		*s = list

		return nil

	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler. Single entries are written as a
// plain string.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}
