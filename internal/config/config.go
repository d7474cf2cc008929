// Package config loads catalogd settings from a file and the environment.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/go-playground/validator.v9"
)

// Defaults applied by WithDefaults.
const (
	DefaultAddr           = ":8080"
	DefaultAPIPrefix      = "/api/v1"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultMaxBodyBytes   = 1 << 20
	DefaultServiceAccount = "default"
	DefaultBranch         = "main"
	DefaultTimeoutSeconds = 30
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr           string        `json:"addr" yaml:"addr" toml:"addr" split_words:"true"`
	APIPrefix      string        `json:"api_prefix" yaml:"api_prefix" toml:"api_prefix" split_words:"true"`
	LogLevel       string        `json:"log_level" yaml:"log_level" toml:"log_level" split_words:"true"`
	LogFormat      string        `json:"log_format" yaml:"log_format" toml:"log_format" split_words:"true" validate:"omitempty,oneof=json console"`
	MaxBodyBytes   int64         `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" split_words:"true" validate:"gte=0"`
	CORSOrigins    Origins       `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" split_words:"true" validate:"dive,origin"`
	ServiceAccount string        `json:"service_account" yaml:"service_account" toml:"service_account" split_words:"true"`
	InstanceTypes  InstanceTable `json:"instance_types" yaml:"instance_types" toml:"instance_types" split_words:"true"`
	Registry       Registry      `json:"registry" yaml:"registry" toml:"registry" envconfig:"REGISTRY"`
	GitLab         GitLab        `json:"gitlab" yaml:"gitlab" toml:"gitlab" envconfig:"GITLAB"`
}

// Registry locates the MLflow tracking server.
type Registry struct {
	TrackingURI    string `json:"tracking_uri" yaml:"tracking_uri" toml:"tracking_uri" split_words:"true" validate:"required,url"`
	Token          string `json:"token" yaml:"token" toml:"token" split_words:"true"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" split_words:"true" validate:"gte=0"`
}

// GitLab locates the source-control server and the commit defaults. Commits are
// disabled when BaseURI is empty.
type GitLab struct {
	BaseURI        string `json:"base_uri" yaml:"base_uri" toml:"base_uri" split_words:"true" validate:"omitempty,url"`
	AccessToken    string `json:"access_token" yaml:"access_token" toml:"access_token" split_words:"true"`
	ProjectID      string `json:"project_id" yaml:"project_id" toml:"project_id" split_words:"true"`
	Branch         string `json:"branch" yaml:"branch" toml:"branch" split_words:"true"`
	PathPrefix     string `json:"path_prefix" yaml:"path_prefix" toml:"path_prefix" split_words:"true"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" split_words:"true" validate:"gte=0"`
}

// Enabled reports whether commits can be made.
func (g GitLab) Enabled() bool { return g.BaseURI != "" }

// Timeout converts TimeoutSeconds.
func (r Registry) Timeout() time.Duration { return time.Duration(r.TimeoutSeconds) * time.Second }

// Timeout converts TimeoutSeconds.
func (g GitLab) Timeout() time.Duration { return time.Duration(g.TimeoutSeconds) * time.Second }

// WithDefaults returns a copy of c with unset fields filled in.
func (c Config) WithDefaults() Config {
	out := c
	if out.Addr == "" {
		out.Addr = DefaultAddr
	}
	if out.APIPrefix == "" {
		out.APIPrefix = DefaultAPIPrefix
	}
	out.APIPrefix = "/" + strings.Trim(out.APIPrefix, "/")
	if out.APIPrefix == "/" {
		out.APIPrefix = ""
	}
	if out.LogLevel == "" {
		out.LogLevel = DefaultLogLevel
	}
	if out.LogFormat == "" {
		out.LogFormat = DefaultLogFormat
	}
	if out.MaxBodyBytes == 0 {
		out.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if out.ServiceAccount == "" {
		out.ServiceAccount = DefaultServiceAccount
	}
	if out.Registry.TimeoutSeconds == 0 {
		out.Registry.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if out.GitLab.TimeoutSeconds == 0 {
		out.GitLab.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if out.GitLab.Branch == "" {
		out.GitLab.Branch = DefaultBranch
	}
	out.CORSOrigins = out.CORSOrigins.normalize()
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	})
	if err := v.RegisterValidation("origin", func(fl validator.FieldLevel) bool {
		return validOrigin(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks c after defaults have been applied.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fieldPath(fe.Namespace()), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	if c.GitLab.Enabled() && c.GitLab.AccessToken == "" {
		return fmt.Errorf("invalid config: gitlab.access_token is required when gitlab.base_uri is set")
	}
	if _, err := c.InstanceTypes.Resolver(); err != nil {
		return err
	}
	return nil
}

func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
