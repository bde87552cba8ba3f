package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	prefectTag   = "prefect"
	prefectText  = "must be a letter-digit-letter code (eg. A1B)"
	prefectRegex = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z]$`)

	schoolEmailTag  = "schoolemail"
	schoolEmailText = "must be a school email address"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	Translator, _ = uni.GetTranslator("en")

	Validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(prefectTag, prefectValidation)
	RegisterCustomTranslation(prefectTag, prefectText)

	_ = Validate.RegisterValidation(schoolEmailTag, schoolEmailValidation)
	RegisterCustomTranslation(schoolEmailTag, schoolEmailText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// prefectValidation only allows 3-character letter-digit-letter prefect codes.
func prefectValidation(fl validator.FieldLevel) bool {
	return prefectRegex.MatchString(fl.Field().String())
}

// schoolEmailValidation checks that the address belongs to the institutional domain.
func schoolEmailValidation(fl validator.FieldLevel) bool {
	return strings.HasSuffix(fl.Field().String(), "@"+Conf.SchoolEmailDomain)
}
