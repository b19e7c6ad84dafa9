package waitlist

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/akeren/trustlink-waitlist/internal/models"
	apperrors "github.com/akeren/trustlink-waitlist/pkg/errors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var emailCaser = cases.Lower(language.Und)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return emailCaser.String(strings.TrimSpace(email))
}

type signupValidator struct {
	validate *validator.Validate
}

func newSignupValidator() *signupValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("waitlist_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return &signupValidator{validate: v}
}

// Validate checks a normalized request. Missing fields win over a bad
// actor_type, which wins over a malformed email. rawEmail is the email as
// submitted: a whitespace-only address is malformed, not missing.
func (sv *signupValidator) Validate(req *SignupRequest, rawEmail string) error {
	err := sv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInvalidRequestError(msgInvalidBody, err)
	}

	var badActorType, badEmail bool
	for _, fe := range fieldErrs {
		switch {
		case fe.Tag() == "required" && !(fe.Field() == "email" && rawEmail != ""):
			return apperrors.NewInvalidRequestError(msgMissingFields, err).
				WithDetail("required", RequiredSignupFields)
		case fe.Field() == "actor_type":
			badActorType = true
		case fe.Field() == "email":
			badEmail = true
		}
	}

	if badActorType {
		return apperrors.NewInvalidRequestError(msgInvalidActorType, err).
			WithDetail("valid_types", models.ValidActorTypes)
	}
	if badEmail {
		return apperrors.NewInvalidRequestError(msgInvalidEmail, err)
	}

	return apperrors.NewInvalidRequestError(msgInvalidBody, err)
}
