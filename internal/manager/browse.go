package manager

import (
	"context"

	"modelcatalog/internal/registry"
	"modelcatalog/pkg/types"
)

// SearchRegisteredModels returns the latest versions of every matching registered model.
func (m *Manager) SearchRegisteredModels(ctx context.Context, provider string, opts registry.SearchOptions) (types.ModelsResponse, error) {
	c, err := m.catalog(provider)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	page, err := c.SearchRegisteredModels(ctx, opts)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	return toModelsResponse(provider, page), nil
}

// SearchModelVersions returns every matching model version.
func (m *Manager) SearchModelVersions(ctx context.Context, provider string, opts registry.SearchOptions) (types.ModelsResponse, error) {
	c, err := m.catalog(provider)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	page, err := c.SearchModelVersions(ctx, opts)
	if err != nil {
		return types.ModelsResponse{}, err
	}
	return toModelsResponse(provider, page), nil
}

// LatestVersion returns nil, nil when the model exists but has no versions.
func (m *Manager) LatestVersion(ctx context.Context, provider, name string) (*types.ModelVersion, error) {
	c, err := m.catalog(provider)
	if err != nil {
		return nil, err
	}
	mv, err := c.GetLatestVersion(ctx, name)
	if err != nil || mv == nil {
		return nil, err
	}
	out := toModelVersion(provider, *mv)
	return &out, nil
}

// ModelVersion looks up one exact version.
func (m *Manager) ModelVersion(ctx context.Context, provider, name, version string) (types.ModelVersion, error) {
	c, err := m.catalog(provider)
	if err != nil {
		return types.ModelVersion{}, err
	}
	mv, err := c.GetVersion(ctx, name, version)
	if err != nil {
		return types.ModelVersion{}, err
	}
	return toModelVersion(provider, mv), nil
}

func toModelsResponse(provider string, page registry.SearchPage) types.ModelsResponse {
	out := types.ModelsResponse{Models: make([]types.ModelVersion, 0, len(page.Records))}
	for _, r := range page.Records {
		out.Models = append(out.Models, toModelVersion(provider, r))
	}
	if page.HasMore() {
		tok := page.NextPageToken
		out.PageToken = &tok
	}
	return out
}

func toModelVersion(provider string, mv registry.ModelVersion) types.ModelVersion {
	kind, ok := providerKinds[provider]
	if !ok {
		kind = provider
	}
	tags := make([]types.ModelTag, 0, len(mv.Tags))
	for _, t := range mv.Tags {
		tags = append(tags, types.ModelTag{Key: t.Key, Value: t.Value})
	}
	return types.ModelVersion{
		Name:              mv.Name,
		Version:           mv.Version,
		CreationTimestamp: mv.CreationTimestamp,
		Tags:              tags,
		Description:       mv.Description,
		Source:            mv.Source,
		Type:              kind,
	}
}
