package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var hhmmRx = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// v is the package-level singleton validator. Custom tags are registered in init.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsHHMM(fl.Field().String())
	})
}

// IsHHMM reports whether s is a 24h "HH:MM" time of day.
func IsHHMM(s string) bool {
	return hhmmRx.MatchString(s)
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
