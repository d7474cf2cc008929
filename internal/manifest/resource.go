package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Resource is any declarative document this service can render. Implementations
// are plain structs whose declaration order defines the output key order.
type Resource interface {
	GroupVersionKind() schema.GroupVersionKind
	ObjectName() string
}

// ToYAML renders r as a YAML document.
func ToYAML(r Resource) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("render %s %q: %w", r.GroupVersionKind().Kind, r.ObjectName(), err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToJSON renders r as indented JSON.
func ToJSON(r Resource) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render %s %q: %w", r.GroupVersionKind().Kind, r.ObjectName(), err)
	}
	return b, nil
}
