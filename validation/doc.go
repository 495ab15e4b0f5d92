// Package validation validates configuration structs and user input.
//
// Struct tag validation uses go-playground/validator and reports field
// names by their mapstructure key, so messages match the config file:
//
//	type HTTPConfig struct {
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects errors for input that has no struct,
// such as command-line flags:
//
//	v := validation.New()
//	v.OneOf("method", method, []string{"GET", "POST"})
//	err := v.Err()
//
// Both return *Error listing every failing field.
package validation
