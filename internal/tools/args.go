package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	defaultSearchCount = 100
	minSearchCount     = 1
	maxSearchCount     = 1000
	defaultTimeRange   = "24h"
)

type SearchEventsArgs struct {
	Query    string `json:"query"`
	Count    int    `json:"count" validate:"min=1,max=1000"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	Level    string `json:"level" validate:"omitempty,oneof=Verbose Debug Information Warning Error Fatal"`
}

type GetEventArgs struct {
	EventID string `json:"eventId" validate:"required"`
}

type AnalyzeLogsArgs struct {
	Query     string `json:"query"`
	TimeRange string `json:"timeRange" validate:"oneof=1h 6h 24h 7d 30d"`
	GroupBy   string `json:"groupBy"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report violations with the argument names callers use
	v.RegisterTagNameFunc(jsonName)
	return v
}

// decodeArgs fills out from the raw call arguments and validates it. Fields
// already set on out act as defaults. Each argument is decoded on its own so
// that every violation is reported together.
func decodeArgs(tool string, args map[string]any, out any) error {
	v := reflect.ValueOf(out).Elem()
	t := v.Type()

	var violations []string
	badFields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		name := jsonName(t.Field(i))
		value, ok := args[name]
		if name == "" || !ok || value == nil {
			continue
		}
		if err := decodeField(value, v.Field(i).Addr().Interface()); err != nil {
			badFields[name] = true
			violations = append(violations, fieldViolation(name, err))
		}
	}

	if err := validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate %s arguments: %w", tool, err)
		}
		for _, fe := range fieldErrs {
			if badFields[fe.Field()] {
				continue
			}
			violations = append(violations, violationMessage(fe))
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Tool: tool, Violations: violations}
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func decodeField(value any, dst any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func fieldViolation(name string, err error) string {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return fmt.Sprintf("%s is invalid: %v", name, err)
	}
	switch typeErr.Type.Kind() {
	case reflect.Int, reflect.Int64:
		if strings.HasPrefix(typeErr.Value, "number") {
			return fmt.Sprintf("%s must be an integer", name)
		}
		return fmt.Sprintf("%s must be a number", name)
	case reflect.String:
		return fmt.Sprintf("%s must be a string", name)
	default:
		return fmt.Sprintf("%s has invalid type %s", name, typeErr.Value)
	}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
