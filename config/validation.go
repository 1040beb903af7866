package config

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mwantia/tenantvfs/data/errors"
)

var validate = validator.New()

// Validate checks cfg against its struct tags and the rules that cannot be
// expressed in tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	for tenant := range cfg.Tenants {
		if strings.TrimSpace(tenant) == "" {
			return errors.InvalidArgument("tenants: empty tenant id")
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return errors.InvalidArgument("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return errors.InvalidArgument("invalid configuration: %v", err)
}
