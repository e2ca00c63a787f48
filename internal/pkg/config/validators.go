// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingRequiredConfig = errors.New("missing required configuration")
	ErrInvalidConfig         = errors.New("invalid configuration")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first and environment rules second.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return translateValidationError(err)
	}

	// development, local and test may rely on trust auth
	needsPassword := !c.IsDevelopment() && c.App.Environment != "test"
	if needsPassword && c.Database.Password == "" && c.Database.PasswordSecretID == "" {
		return fmt.Errorf("%w: db.password or db.password_secret_id", ErrMissingRequiredConfig)
	}

	if c.IsProduction() {
		return (&ProductionValidator{}).Validate(c)
	}
	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("%w: database SSL must be enabled in production", ErrInvalidConfig)
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("%w: api.base_url must use https in production", ErrInvalidConfig)
	}
	if cfg.Database.EnableQueryLogging {
		return fmt.Errorf("%w: query logging must be disabled in production", ErrInvalidConfig)
	}
	return nil
}

func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	missing := false
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			missing = true
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gtefield":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}

	kind := ErrInvalidConfig
	if missing {
		kind = ErrMissingRequiredConfig
	}
	return fmt.Errorf("%w: %s", kind, strings.Join(msgs, "; "))
}
