package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewQuoteValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("enum_token", enumTokenValidator),
		},
		{
			Rule: registerFn("site_tag", siteTagValidator),
		},
		{
			Rule: registerFn("zip5", zipValidator),
		},
		{
			Rule: registerFn("phone", phoneValidator),
		},
	}
}
