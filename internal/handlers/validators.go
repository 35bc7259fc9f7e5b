package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var egyptianPhone = regexp.MustCompile(`^01[0125][0-9]{8}$`)

const passwordSpecials = "!@#$%^&*"

// RegisterValidators installs the storefront's custom rules on gin's
// validator and makes it report form field names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("egphone", func(fl validator.FieldLevel) bool {
		return egyptianPhone.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("pwcomplex", func(fl validator.FieldLevel) bool {
		return complexPassword(fl.Field().String())
	})
}

// complexPassword requires a letter, a digit and one of !@#$%^&*.
func complexPassword(s string) bool {
	var letter, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return letter && digit && special
}

// fieldErrors maps form field names to a readable message. Errors that are
// not validation failures land under "_form".
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_form"] = "Please check the highlighted fields and try again."
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be less than %s", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "egphone":
		return "Invalid Egyptian phone number"
	case "pwcomplex":
		return "Password must contain a letter, a number and one of " + passwordSpecials
	}
	return label + " is invalid"
}

// humanize turns "rePassword" into "Re password".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
			r = unicode.ToLower(r)
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
