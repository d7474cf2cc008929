package manager

import (
	"context"

	"github.com/rs/zerolog"

	"modelcatalog/internal/gitlab"
	"modelcatalog/internal/instancetype"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
)

// ProviderMLflow is the route name of the MLflow catalog.
const ProviderMLflow = "mlflow"

// Defaults applied when the corresponding request or Config fields are unset.
const (
	defaultProvider     = ProviderMLflow
	defaultCommitAction = gitlab.ActionCreate
)

// providerKinds maps provider route names to the type label shown to callers.
var providerKinds = map[string]string{
	ProviderMLflow: "MLflow",
}

// Catalog is a browsable model registry. *registry.Client satisfies it.
type Catalog interface {
	SearchRegisteredModels(ctx context.Context, opts registry.SearchOptions) (registry.SearchPage, error)
	SearchModelVersions(ctx context.Context, opts registry.SearchOptions) (registry.SearchPage, error)
	GetLatestVersion(ctx context.Context, name string) (*registry.ModelVersion, error)
	GetVersion(ctx context.Context, name, version string) (registry.ModelVersion, error)
}

// Committer writes rendered manifests to source control. *gitlab.Client satisfies it.
type Committer interface {
	Commit(ctx context.Context, projectID, branch, message string, actions []gitlab.Action) error
}

// GitOps holds the commit defaults used when a request leaves them empty.
type GitOps struct {
	ProjectID  string
	Branch     string
	PathPrefix string
}

// Config encapsulates everything the Manager needs. Catalogs is keyed by provider
// route name. A nil Committer disables commits; a nil Resolver uses the built-in table.
type Config struct {
	Catalogs    map[string]Catalog
	Resolver    *instancetype.Resolver
	Synthesizer manifest.Synthesizer
	Committer   Committer
	GitOps      GitOps
	Logger      zerolog.Logger
}
