package lint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// optionsValidate is the validator instance for linter option structs.
// Initialized in init() with custom validators.
var optionsValidate *validator.Validate

var unknownFieldRe = regexp.MustCompile(`field (\S+) not found`)

func init() {
	optionsValidate = validator.New(validator.WithRequiredStructEnabled())
	optionsValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = optionsValidate.RegisterValidation("regexp", validateRegexp)
}

// validateRegexp checks that a string option compiles as a Go regular expression.
func validateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// DecodeOptions decodes raw config values into out, which already holds the defaults.
// Unknown keys are rejected, then `validate` struct tags are checked.
func DecodeOptions(linter string, raw map[string]any, out any) error {
	if len(raw) > 0 {
		data, err := yaml.Marshal(raw)
		if err != nil {
			return &ConfigError{Linter: linter, Err: fmt.Errorf("%w: %w", ErrInvalidOption, err)}
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
			if m := unknownFieldRe.FindStringSubmatch(err.Error()); m != nil {
				return &ConfigError{Linter: linter, Key: m[1], Err: ErrUnknownOption}
			}
			return &ConfigError{Linter: linter, Err: fmt.Errorf("%w: %w", ErrInvalidOption, err)}
		}
	}

	if err := optionsValidate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			key := strings.TrimPrefix(fe.Namespace(), rootNamespace(fe))
			return &ConfigError{
				Linter: linter,
				Key:    key,
				Err:    fmt.Errorf("%w: value %v does not satisfy %q", ErrInvalidOption, fe.Value(), rule),
			}
		}
		return &ConfigError{Linter: linter, Err: fmt.Errorf("%w: %w", ErrInvalidOption, err)}
	}
	return nil
}

// rootNamespace returns the "TypeName." prefix of a validation error namespace.
func rootNamespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
