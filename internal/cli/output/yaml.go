package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format writes data as YAML. Structs are round-tripped through their
// JSON representation first so json struct tags drive the key names.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	normalized, err := normalizeForYAML(data)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(normalized)
}

// normalizeForYAML reduces data to plain maps and slices via JSON so
// the YAML output matches the API's field names.
func normalizeForYAML(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
