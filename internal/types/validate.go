package types

import (
	_ "time/tzdata" // the timezone tag and BirthRequest.Location resolve IANA names

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/saju-coach/internal/gap"
)

// validate is shared by every request type. validator caches struct metadata
// and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// typecode: a 4-letter personality type such as "ENTJ", any case
	_ = v.RegisterValidation("typecode", func(fl validator.FieldLevel) bool {
		_, err := gap.NormalizeTypeCode(fl.Field().String())
		return err == nil
	})
	return v
}

// Validator returns the shared validator with the package's custom tags registered.
func Validator() *validator.Validate {
	return validate
}
