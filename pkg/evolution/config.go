package evolution

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultStabilityThreshold is the Jaccard distance below which a matched
// community keeps its stable identity.
const DefaultStabilityThreshold = 0.34

var validate = newValidator()

// newValidator reports fields by their yaml name when they have one
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Config parameterises the propagator
type Config struct {
	// StabilityThreshold gates stable identity inheritance: a matched pair
	// keeps its stable id only when distance < StabilityThreshold.
	StabilityThreshold float64 `validate:"gte=0,lte=1"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() Config {
	return Config{StabilityThreshold: DefaultStabilityThreshold}
}

// Validate checks the configuration, returning a *ConfigurationError
func (c Config) Validate() error {
	return ValidateStruct(c)
}

// ConfigurationError reports an invalid configuration value
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ValidateStruct runs struct-tag validation and converts the first failure
// into a *ConfigurationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &ConfigurationError{Field: "config", Reason: err.Error()}
	}

	e := validationErrs[0]
	return &ConfigurationError{Field: e.Field(), Value: e.Value(), Reason: describe(e)}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "gte", "min":
		return "must be at least " + e.Param()
	case "lte", "max":
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of " + e.Param()
	default:
		return fmt.Sprintf("validation failed (%s)", e.Tag())
	}
}
