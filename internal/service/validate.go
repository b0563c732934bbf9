package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// mensajes tal como los muestra el frontend
var fieldMessages = map[string]string{
	"username.required":  "username should not be empty",
	"username.max":       "Username cannot exceed 50 characters",
	"firstName.required": "firstName should not be empty",
	"email.required":     "Email field cannot be empty",
	"email.email":        "email must be an email",
	"password.required":  "password should not be empty",
	"password.min":       "Password must have a minimum length of 5 characters",
	"password.max":       "Password must have a maximum length of 20 characters",
	"password.bcryptmax": "Password must not exceed 72 bytes",
	"movieId.required":   "movieId should not be empty",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// bcrypt no acepta más de 72 bytes; max=20 cuenta runas, no bytes
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})
	return v
}

// Validate corre las reglas `validate:"..."` del struct y devuelve un
// *ValidationError con un mensaje por regla rota.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if m, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
			msgs = append(msgs, m)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return &ValidationError{Messages: msgs}
}
