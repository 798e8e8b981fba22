package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("crimetype", func(fl validator.FieldLevel) bool {
		return containsString(CrimeTypes, fl.Field().String())
	})
	_ = v.RegisterValidation("casepriority", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("casestatus", func(fl validator.FieldLevel) bool {
		return ValidStatus(CaseStatus(fl.Field().String()))
	})
	_ = v.RegisterValidation("investigationtype", func(fl validator.FieldLevel) bool {
		return containsString(InvestigationTypes, fl.Field().String())
	})

	return v
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks a request struct against its validate tags and returns one
// violation per invalid field. A nil result means the input is valid.
func Validate(i interface{}) []FieldViolation {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldViolation{{Field: "request", Message: err.Error()}}
	}

	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{
			Field:   fieldPath(fe.Namespace()),
			Message: violationMessage(fe),
		})
	}
	return violations
}

// fieldPath strips the root struct name from the validator namespace,
// e.g. "CreateCaseRequest.Location.Latitude" -> "Location.Latitude".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "hexadecimal":
		return "must be a hexadecimal identifier"
	case "crimetype":
		return fmt.Sprintf("must be one of: %s", strings.Join(CrimeTypes, ", "))
	case "casepriority":
		return "must be one of: Low, Medium, High, Critical"
	case "casestatus":
		return "is not a recognized case status"
	case "investigationtype":
		return fmt.Sprintf("must be one of: %s", strings.Join(InvestigationTypes, ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
