package booking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"benessere-booking/internal/slots"
)

// FieldBody is reported when the request body is not a JSON object at all.
const FieldBody = "body"

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every field that violated a rule, in payload order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "booking: invalid fields: " + strings.Join(names, ", ")
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

	validate   = newValidator()
	fieldOrder = jsonFieldOrder(reflect.TypeOf(Payload{}))
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	must(v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !datePattern.MatchString(s) {
			return false
		}
		_, err := slots.ParseDate(s)
		return err == nil
	}))
	must(v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if !clockPattern.MatchString(s) {
			return false
		}
		_, err := time.Parse(slots.ClockLayout, s)
		return err == nil
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func jsonFieldOrder(t reflect.Type) map[string]int {
	order := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		order[jsonName(t.Field(i))] = i
	}
	return order
}

// Decode parses a JSON booking form and validates it. Malformed JSON and
// values of the wrong JSON type are reported as a *ValidationError like any
// other violation.
func Decode(data []byte) (Request, error) {
	var p Payload
	var typeErrs []FieldError

	err := json.Unmarshal(bytes.TrimSpace(data), &p)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return Request{}, &ValidationError{Fields: []FieldError{{
				Field:   FieldBody,
				Rule:    "json",
				Message: "must be a JSON object",
			}}}
		}
		typeErrs = append(typeErrs, FieldError{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: "must be a " + typeName(typeErr.Type),
		})
	}

	req, err := Validate(p)
	if len(typeErrs) == 0 {
		return req, err
	}

	// The mistyped field was left zero, so any rule it also tripped is
	// replaced by the type error.
	fields := typeErrs
	var verr *ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			if f.Field != typeErrs[0].Field {
				fields = append(fields, f)
			}
		}
	}
	sortFields(fields)
	return Request{}, &ValidationError{Fields: fields}
}

// Validate applies the booking rules to p. On success notes and locale carry
// their defaults when they were absent.
func Validate(p Payload) (Request, error) {
	err := validate.Struct(p)
	if err == nil {
		return p.request(), nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Request{}, fmt.Errorf("booking: validate: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	sortFields(fields)
	return Request{}, &ValidationError{Fields: fields}
}

func sortFields(fields []FieldError) {
	sort.SliceStable(fields, func(i, j int) bool {
		return position(fields[i].Field) < position(fields[j].Field)
	})
}

func position(field string) int {
	if i, ok := fieldOrder[field]; ok {
		return i
	}
	return len(fieldOrder)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "isodate":
		return "must be a calendar date formatted YYYY-MM-DD"
	case "clock":
		return "must be a 24h time formatted HH:MM"
	default:
		return "is invalid"
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value of another type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "whole number"
	case reflect.Float64, reflect.Float32:
		return "number"
	case reflect.String:
		return "string"
	default:
		return t.String()
	}
}
