package fee

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/karo/core"
)

var (
	// custom validation tags & texts
	payMethodTag  = "paymethod"
	payMethodText = "invalid payment method"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(payMethodTag, payMethodValidation)
	core.RegisterCustomTranslation(validate, translator, payMethodTag, payMethodText)
}

// payMethodValidation checks that the provided payment method is one of AllMethods.
func payMethodValidation(fl validator.FieldLevel) bool {
	return IsValidMethod(fl.Field().String())
}
