package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelcatalog/internal/config"
	"modelcatalog/internal/gitlab"
	"modelcatalog/internal/manager"
	"modelcatalog/internal/manifest"
	"modelcatalog/internal/registry"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "catalogd",
		Short:         "Model catalog and inference-service manifest synthesizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .json, .toml); defaults to the first of "+strings.Join(config.SearchPaths, ", "))
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")

	root.AddCommand(newServeCmd(opts), newRenderCmd(opts), newInstanceTypesCmd(opts))
	return root
}

// load returns the effective config. Strict loading requires a complete service
// config; the offline commands only need the instance-type table to be valid.
func (o *rootOptions) load(strict bool) (config.Config, error) {
	cfg, err := config.Gather(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if strict {
		return cfg, cfg.Validate()
	}
	_, err = cfg.InstanceTypes.Resolver()
	return cfg, err
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := w
	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "catalogd").Logger()
}

// buildManager wires the upstream clients described by cfg. The MLflow catalog is
// registered only when a tracking URI is set; commits only when GitLab is.
func buildManager(cfg config.Config, log zerolog.Logger) (*manager.Manager, error) {
	resolver, err := cfg.InstanceTypes.Resolver()
	if err != nil {
		return nil, err
	}
	catalogs := map[string]manager.Catalog{}
	if cfg.Registry.TrackingURI != "" {
		catalogs[manager.ProviderMLflow] = registry.New(registry.Config{
			TrackingURI: cfg.Registry.TrackingURI,
			Token:       cfg.Registry.Token,
			Timeout:     cfg.Registry.Timeout(),
		}, log)
	}
	var committer manager.Committer
	if cfg.GitLab.Enabled() {
		committer = gitlab.New(gitlab.Config{
			BaseURI:     cfg.GitLab.BaseURI,
			AccessToken: cfg.GitLab.AccessToken,
			Timeout:     cfg.GitLab.Timeout(),
		}, log)
	}
	return manager.New(manager.Config{
		Catalogs:    catalogs,
		Resolver:    resolver,
		Synthesizer: manifest.Synthesizer{ServiceAccount: cfg.ServiceAccount},
		Committer:   committer,
		GitOps: manager.GitOps{
			ProjectID:  cfg.GitLab.ProjectID,
			Branch:     cfg.GitLab.Branch,
			PathPrefix: cfg.GitLab.PathPrefix,
		},
		Logger: log,
	}), nil
}
