package lib

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var goValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// feedurl accepts absolute http, https and file URLs.
	_ = v.RegisterValidation("feedurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		switch u.Scheme {
		case "http", "https":
			return u.Host != ""
		case "file":
			return u.Path != "" || u.Host != ""
		default:
			return false
		}
	})
	return v
}

// ValidationErrors lists every failed constraint of a struct.
type ValidationErrors struct {
	Errors []string `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "no validation errors"
	}

	return strings.Join(ve.Errors, "; ")
}

// ValidateStruct validates a struct using go-playground/validator. Each
// failed field is reported by its namespace and the tag it failed, e.g.
// "DataSource.BaseURL feedurl".
func ValidateStruct(s any) error {
	err := goValidator.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := ValidationErrors{}
	for _, e := range ve {
		msg := fmt.Sprintf("%s %s", e.Namespace(), e.ActualTag())
		if e.Param() != "" {
			msg += "=" + e.Param()
		}
		out.Errors = append(out.Errors, msg)
	}
	return out
}
