package resource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// BoolString is a boolean the remote API transmits as "TRUE" or "FALSE".
// It decodes from either a native boolean or a case-insensitive string.
type BoolString bool

func NewBoolString(value bool) *BoolString {
	converted := BoolString(value)
	return &converted
}

func (b BoolString) Bool() bool {
	return bool(b)
}

func (b BoolString) String() string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func ParseBoolString(value string) (BoolString, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
	return BoolString(parsed), nil
}

func (b BoolString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BoolString) UnmarshalJSON(data []byte) error {
	var native bool
	if err := json.Unmarshal(data, &native); err == nil {
		*b = BoolString(native)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("invalid boolean value %s", string(data))
	}
	parsed, err := ParseBoolString(text)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b BoolString) MarshalYAML() (any, error) {
	return bool(b), nil
}

func (b *BoolString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a boolean value", node.Line)
	}
	parsed, err := ParseBoolString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = parsed
	return nil
}
