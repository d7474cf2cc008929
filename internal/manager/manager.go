package manager

import (
	"sort"

	"github.com/rs/zerolog"

	"modelcatalog/internal/instancetype"
	"modelcatalog/internal/manifest"
	"modelcatalog/pkg/types"
)

// Manager routes catalog and deployment operations. It holds no mutable state
// and is safe for concurrent use.
type Manager struct {
	catalogs  map[string]Catalog
	resolver  *instancetype.Resolver
	synth     manifest.Synthesizer
	committer Committer
	gitops    GitOps
	log       zerolog.Logger
}

// New constructs a Manager from cfg.
func New(cfg Config) *Manager {
	m := &Manager{
		catalogs:  make(map[string]Catalog, len(cfg.Catalogs)),
		resolver:  cfg.Resolver,
		synth:     cfg.Synthesizer,
		committer: cfg.Committer,
		gitops:    cfg.GitOps,
		log:       cfg.Logger,
	}
	for name, c := range cfg.Catalogs {
		if c != nil {
			m.catalogs[name] = c
		}
	}
	if m.resolver == nil {
		m.resolver = builtinResolver()
	}
	return m
}

func builtinResolver() *instancetype.Resolver {
	r, err := instancetype.NewResolver(nil)
	if err != nil {
		panic("built-in instance types: " + err.Error())
	}
	return r
}

// Providers lists the registered provider names, sorted.
func (m *Manager) Providers() []string {
	out := make([]string, 0, len(m.catalogs))
	for name := range m.catalogs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CommitsEnabled reports whether a source-control client is configured.
func (m *Manager) CommitsEnabled() bool { return m.committer != nil }

func (m *Manager) catalog(provider string) (Catalog, error) {
	c, ok := m.catalogs[provider]
	if !ok {
		return nil, ErrProviderNotFound(provider)
	}
	return c, nil
}

// InstanceTypes lists the merged instance-type table in display order.
func (m *Manager) InstanceTypes() []types.InstanceType {
	list := m.resolver.List()
	out := make([]types.InstanceType, 0, len(list))
	for _, d := range list {
		out = append(out, types.InstanceType{
			Name:        d.Name,
			CPU:         d.Resources.CPU,
			Memory:      d.Resources.Memory,
			Description: d.Description,
		})
	}
	return out
}
