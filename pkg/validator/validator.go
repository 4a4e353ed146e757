package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"anoa.com/communityforum/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

// FormField is the key FieldErrors uses for errors not tied to one field.
const FormField = "_form"

var fieldLabels = map[string]string{
	"username":             "Le pseudo",
	"email":                "L'adresse email",
	"plainPassword":        "Le mot de passe",
	"plainPasswordConfirm": "La confirmation du mot de passe",
	"password":             "Le mot de passe",
	"name":                 "Le nom",
	"category":             "La catégorie",
	"subject":              "Le sujet",
	"text":                 "Le commentaire",
	"date":                 "La date",
}

// Register installs the custom rules and makes field errors report the form
// field name instead of the struct field name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v.RegisterValidation("notblank", notBlank)
}

// New returns a validator configured like gin's binding engine.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	_ = Register(v)
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return !field.IsZero()
}

// FieldErrors maps a binding error to one message per form field. Errors that
// are not validation errors land under FormField.
func FieldErrors(err error) map[string]string {
	errs := make(map[string]string)
	if err == nil {
		return errs
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs[FormField] = "Le formulaire contient des valeurs invalides."
		return errs
	}
	for _, fieldError := range validationErrors {
		if _, exists := errs[fieldError.Field()]; exists {
			continue
		}
		errs[fieldError.Field()] = getFieldErrorMessage(fieldError)
	}
	return errs
}

// BusinessErrors gives a service side *apperror.FieldError the shape of
// FieldErrors. ok is false for any other error.
func BusinessErrors(err error) (map[string]string, bool) {
	fe, ok := apperror.AsFieldError(err)
	if !ok {
		return nil, false
	}
	return map[string]string{fe.Field: fe.Message}, true
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required", "notblank":
		if fe.Field() == "text" {
			return "Le commentaire ne peut pas être vide."
		}
		return fmt.Sprintf("%s est obligatoire.", field)
	case "email":
		return "Veuillez saisir une adresse email valide."
	case "eqfield":
		return "Les deux champs de mot de passe doivent correspondre."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s doit contenir au moins %s caractères.", field, fe.Param())
		}
		return fmt.Sprintf("%s doit être au moins %s.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s ne peut pas dépasser %s caractères.", field, fe.Param())
		}
		return fmt.Sprintf("%s ne peut pas dépasser %s.", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s n'est pas une date valide.", field)
	default:
		return fmt.Sprintf("%s n'est pas valide.", field)
	}
}

func getFieldName(field string) string {
	if name, ok := fieldLabels[field]; ok {
		return name
	}
	return field
}
