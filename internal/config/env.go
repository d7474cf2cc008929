package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"modelcatalog/internal/instancetype"
)

// EnvPrefix namespaces the structured environment variables, e.g. CATALOGD_REGISTRY_TRACKING_URI.
const EnvPrefix = "CATALOGD"

// bareEnv holds the unprefixed variable names the service has always accepted.
type bareEnv struct {
	TrackingURI    string        `envconfig:"MLFLOW_TRACKING_URI"`
	TrackingToken  string        `envconfig:"MLFLOW_TRACKING_TOKEN"`
	GitLabBaseURI  string        `envconfig:"GITLAB_BASE_URI"`
	GitLabToken    string        `envconfig:"GITLAB_ACCESS_TOKEN"`
	InstanceTypes  InstanceTable `envconfig:"INSTANCE_TYPES"`
	CORSOrigins    Origins       `envconfig:"BACKEND_CORS_ORIGINS"`
	ServiceAccount string        `envconfig:"SERVICE_ACCOUNT"`
}

// FromEnv overlays environment variables onto cfg. Bare names are applied first,
// then CATALOGD_* names, so the prefixed form wins when both are set.
func FromEnv(cfg *Config) error {
	var bare bareEnv
	if err := envconfig.Process("", &bare); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	setIf(&cfg.Registry.TrackingURI, bare.TrackingURI)
	setIf(&cfg.Registry.Token, bare.TrackingToken)
	setIf(&cfg.GitLab.BaseURI, bare.GitLabBaseURI)
	setIf(&cfg.GitLab.AccessToken, bare.GitLabToken)
	setIf(&cfg.ServiceAccount, bare.ServiceAccount)
	if bare.InstanceTypes != nil {
		cfg.InstanceTypes = bare.InstanceTypes
	}
	if bare.CORSOrigins != nil {
		cfg.CORSOrigins = bare.CORSOrigins
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Origins is a list of CORS origins. From the environment it accepts either a
// comma-separated string or a JSON array.
type Origins []string

// Decode implements envconfig.Decoder.
func (o *Origins) Decode(value string) error {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		var list []string
		if err := json.Unmarshal([]byte(value), &list); err != nil {
			return fmt.Errorf("cors origins: %w", err)
		}
		*o = Origins(list).normalize()
		return nil
	}
	*o = Origins(SplitCSV(value))
	return nil
}

func (o Origins) normalize() Origins {
	if o == nil {
		return nil
	}
	out := Origins{}
	for _, s := range o {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// validOrigin accepts "*" or an absolute http(s) URL.
func validOrigin(s string) bool {
	if s == "*" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InstanceTable is the operator's instance-type mapping. Files carry it as a
// native map; the environment carries it JSON-encoded.
type InstanceTable map[string]instancetype.Resources

// Decode implements envconfig.Decoder.
func (t *InstanceTable) Decode(value string) error {
	m, err := instancetype.ParseTable(value)
	if err != nil {
		return err
	}
	*t = m
	return nil
}

// Resolver merges the table over the built-in instance types.
func (t InstanceTable) Resolver() (*instancetype.Resolver, error) {
	return instancetype.NewResolver(t)
}
