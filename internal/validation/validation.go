package validation

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	MustRegister("callid", ValidateCallID)
	MustRegisterAlias("userid", "min=1,max=64")
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

func Register(v *validator.Validate, tag string, fn validator.Func) error {
	return v.RegisterValidation(tag, fn)
}

func RegisterAlias(v *validator.Validate, tag string, alias string) {
	v.RegisterAlias(tag, alias)
}

func MustRegister(tag string, fn validator.Func) {
	if err := Register(validate, tag, fn); err != nil {
		panic(err)
	}
}

func MustRegisterAlias(tag string, alias string) {
	RegisterAlias(validate, tag, alias)
}
