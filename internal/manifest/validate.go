package manifest

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/go-playground/validator.v9"
	"k8s.io/apimachinery/pkg/util/validation"
)

// SupportedStorageSchemes are the storage URI prefixes the model server can pull from.
var SupportedStorageSchemes = []string{"s3://", "gs://", "https://", "http://", "pvc://"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	must(v.RegisterValidation("storageuri", func(fl validator.FieldLevel) bool {
		uri := fl.Field().String()
		for _, p := range SupportedStorageSchemes {
			if strings.HasPrefix(uri, p) && len(uri) > len(p) {
				return true
			}
		}
		return false
	}))
	must(v.RegisterValidation("dns1035", func(fl validator.FieldLevel) bool {
		return len(validation.IsDNS1035Label(fl.Field().String())) == 0
	}))
	must(v.RegisterValidation("modelversion", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == LatestVersion {
			return true
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return s != ""
	}))
	must(v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "/")
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports a malformed DeploymentSpec or request.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid deployment spec: " + strings.Join(parts, "; ")
}

// Validate checks s after defaults have been applied. Instance types are checked
// separately against the resolver.
func Validate(s DeploymentSpec) error {
	out := &ValidationError{}
	if err := validate.Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
		}
	}
	if a := s.Autoscaling; a != nil && a.MinReplicas != nil && a.MaxReplicas != nil && *a.MaxReplicas < *a.MinReplicas {
		out.Fields = append(out.Fields, FieldError{Field: "autoscaling.max_replicas", Message: "must not be less than min_replicas"})
	}
	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "url":
		return "must be a valid URL"
	case "storageuri":
		return "must start with one of " + strings.Join(SupportedStorageSchemes, ", ")
	case "dns1035":
		return "must be a DNS-1035 label"
	case "modelversion":
		return fmt.Sprintf("must be %q or a numeric version", LatestVersion)
	case "abspath":
		return "must start with /"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
