package storage

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	keyPattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

	// patternTags are the custom validator tags backed by a regexp.
	patternTags = []patternTag{
		{"key", keyPattern},
		{"slug", slugPattern},
	}

	validateOnce sync.Once
	validate     *validator.Validate
)

type patternTag struct {
	name    string
	pattern *regexp.Regexp
}

func registerPatternTags(v *validator.Validate, tags []patternTag) error {
	for _, t := range tags {
		re := t.pattern
		err := v.RegisterValidation(t.name, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("register validation %q: %w", t.name, err)
		}
	}
	return nil
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerPatternTags(v, patternTags); err != nil {
		return nil, err
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v, nil
}

// validatorInstance panics if a custom tag fails to register; model tags
// referencing it could never validate.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v, err := newValidator()
		if err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// Validate checks struct tags on a model. The returned error lists every
// failing field in a human readable form.
func Validate(model interface{}) error {
	err := validatorInstance().Struct(model)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "key":
		return fmt.Sprintf("%s must match ^[a-z0-9_]+$ (got %q)", field, fe.Value())
	case "slug":
		return fmt.Sprintf("%s must be lowercase letters, digits and single dashes (got %q)", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// IsKey reports whether s is a valid section_key or metric_name.
func IsKey(s string) bool {
	return keyPattern.MatchString(s)
}

var slugReplacer = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a slug from a display name: lowercase, runs of other
// characters collapsed to a single dash, no leading or trailing dash.
func Slugify(name string) string {
	s := slugReplacer.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
