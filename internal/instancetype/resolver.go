// Package instancetype maps named compute tiers to CPU and memory quantities.
package instancetype

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Resources are the quantities behind one instance type. Both values are
// Kubernetes quantity strings, e.g. "1" and "2Gi".
type Resources struct {
	CPU    string `json:"cpu" yaml:"cpu" toml:"cpu"`
	Memory string `json:"memory" yaml:"memory" toml:"memory"`
}

// Validate checks that both quantities parse.
func (r Resources) Validate() error {
	if _, err := resource.ParseQuantity(r.CPU); err != nil {
		return fmt.Errorf("cpu %q: %w", r.CPU, err)
	}
	if _, err := resource.ParseQuantity(r.Memory); err != nil {
		return fmt.Errorf("memory %q: %w", r.Memory, err)
	}
	return nil
}

type entry struct {
	name string
	res  Resources
}

// defaults is the built-in table, smallest tier first.
var defaults = []entry{
	{"ml.cpu.nano", Resources{CPU: "0.5", Memory: "512Mi"}},
	{"ml.cpu.micro", Resources{CPU: "1", Memory: "1Gi"}},
	{"ml.cpu.small", Resources{CPU: "1", Memory: "2Gi"}},
	{"ml.cpu.medium", Resources{CPU: "2", Memory: "4Gi"}},
	{"ml.cpu.large", Resources{CPU: "2", Memory: "8Gi"}},
	{"ml.cpu.xlarge", Resources{CPU: "4", Memory: "16Gi"}},
	{"ml.cpu.2xlarge", Resources{CPU: "8", Memory: "32Gi"}},
}

// Defaults returns a copy of the built-in table.
func Defaults() map[string]Resources {
	out := make(map[string]Resources, len(defaults))
	for _, e := range defaults {
		out[e.name] = e.res
	}
	return out
}

// Resolver holds the merged table. It is immutable after construction.
type Resolver struct {
	order []string
	table map[string]Resources
}

// NewResolver merges overrides on top of the built-in table. An override with a
// built-in name replaces it in place; new names are appended in sorted order.
func NewResolver(overrides map[string]Resources) (*Resolver, error) {
	r := &Resolver{table: make(map[string]Resources, len(defaults)+len(overrides))}
	for _, e := range defaults {
		r.order = append(r.order, e.name)
		r.table[e.name] = e.res
	}
	extra := make([]string, 0, len(overrides))
	for name, res := range overrides {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("instance type with empty name")
		}
		if err := res.Validate(); err != nil {
			return nil, fmt.Errorf("instance type %q: %w", name, err)
		}
		if _, ok := r.table[name]; !ok {
			extra = append(extra, name)
		}
		r.table[name] = res
	}
	sort.Strings(extra)
	r.order = append(r.order, extra...)
	return r, nil
}

// Resolve returns the quantities for name.
func (r *Resolver) Resolve(name string) (Resources, error) {
	res, ok := r.table[name]
	if !ok {
		return Resources{}, &UnknownInstanceTypeError{Name: name}
	}
	return res, nil
}

// Names lists the merged table in display order.
func (r *Resolver) Names() []string { return append([]string(nil), r.order...) }

// Description is a display entry for one instance type.
type Description struct {
	Name        string
	Resources   Resources
	Description string
}

// List describes every instance type, e.g. "ml.cpu.small 1 Cores, 2 GB (RAM)".
func (r *Resolver) List() []Description {
	out := make([]Description, 0, len(r.order))
	for _, name := range r.order {
		res := r.table[name]
		out = append(out, Description{Name: name, Resources: res, Description: Describe(name, res)})
	}
	return out
}

// Describe formats one instance type for humans.
func Describe(name string, res Resources) string {
	return fmt.Sprintf("%s %s Cores, %s", name, res.CPU, formatMemory(res.Memory))
}

func formatMemory(m string) string {
	switch {
	case strings.HasSuffix(m, "Gi"):
		if n, err := strconv.Atoi(strings.TrimSuffix(m, "Gi")); err == nil {
			return fmt.Sprintf("%d GB (RAM)", n)
		}
	case strings.HasSuffix(m, "Mi"):
		if n, err := strconv.Atoi(strings.TrimSuffix(m, "Mi")); err == nil {
			return fmt.Sprintf("%d MB (RAM)", n)
		}
	}
	return m + " (RAM)"
}

// ParseTable decodes the JSON-encoded operator mapping, e.g.
// {"ml.gpu.small": {"cpu": "4", "memory": "16Gi"}}.
func ParseTable(s string) (map[string]Resources, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out map[string]Resources
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("parse instance types: %w", err)
	}
	return out, nil
}

// UnknownInstanceTypeError reports a name missing from the merged table.
type UnknownInstanceTypeError struct {
	Name string
}

func (e *UnknownInstanceTypeError) Error() string {
	return fmt.Sprintf("unknown instance type %q", e.Name)
}
