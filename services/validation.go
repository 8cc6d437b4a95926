package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cppla/membership/models"
)

// MembershipRequest is the payload shared by registration and accumulation.
// Pointers distinguish a missing field from a zero value.
type MembershipRequest struct {
	Point          *int    `json:"point"`
	MembershipType *string `json:"membershipType"`
}

// FieldViolation describes one rejected field.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// point bounds mirror models.MaxPoint
type addProfile struct {
	Point          *int    `json:"point" validate:"required,min=0,max=1000000000"`
	MembershipType *string `json:"membershipType" validate:"required,membership_type"`
}

type accumulateProfile struct {
	Point *int `json:"point" validate:"required,min=0,max=1000000000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("membership_type", func(fl validator.FieldLevel) bool {
		return models.MembershipType(fl.Field().String()).Valid()
	})
	return v
}

// ValidateAdd checks a registration payload: point >= 0 and a known membershipType are both required.
func ValidateAdd(req MembershipRequest) []FieldViolation {
	return check(addProfile{Point: req.Point, MembershipType: req.MembershipType})
}

// ValidateAccumulate checks an accumulation payload: only point >= 0 is required.
func ValidateAccumulate(req MembershipRequest) []FieldViolation {
	return check(accumulateProfile{Point: req.Point})
}

func check(profile any) []FieldViolation {
	err := validate.Struct(profile)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Rule: "invalid", Message: err.Error()}}
	}
	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "membership_type":
		names := make([]string, 0, len(models.MembershipTypes()))
		for _, t := range models.MembershipTypes() {
			names = append(names, string(t))
		}
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), strings.Join(names, " "))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
