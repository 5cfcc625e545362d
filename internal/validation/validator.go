// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/feedrank/internal/profile"
)

var (
	instance     *validator.Validate
	instanceOnce sync.Once
)

// FieldError is one failed rule.
type FieldError struct {
	// Field is the namespace below the validated type, e.g. "Feed.DiversityFactor".
	Field string
	Tag   string
	Param string
	Value any

	Message string
}

func (e FieldError) Error() string { return e.Message }

// Error collects every failed rule of one ValidateStruct call.
type Error struct {
	fields []FieldError
}

// Errors returns the failures in struct order.
func (e *Error) Errors() []FieldError {
	return e.fields
}

func (e *Error) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.fields))
	for i, f := range e.fields {
		parts[i] = f.Message
	}
	return strings.Join(parts, "; ")
}

// Validator returns the shared validator with the feedtag rule registered.
func Validator() *validator.Validate {
	instanceOnce.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())

		// feedtag: the value is still a tag after NormalizeTag.
		_ = instance.RegisterValidation("feedtag", func(fl validator.FieldLevel) bool {
			return profile.NormalizeTag(fl.Field().String()) != ""
		})
	})
	return instance
}

// ValidateStruct checks s against its validate tags and returns nil or *Error.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return &Error{fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(failures))
	for _, fe := range failures {
		name := trimTypeName(fe.Namespace())
		fields = append(fields, FieldError{
			Field:   name,
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe, name),
		})
	}
	return &Error{fields: fields}
}

func trimTypeName(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// messages are fmt templates; %[1]s is the field and %[2]s the tag param.
var messages = map[string]string{
	"required":      "%[1]s is required",
	"url":           "%[1]s must be a valid URL",
	"hostname_port": "%[1]s must be host:port",
	"feedtag":       "%[1]s must contain a usable tag",
	"oneof":         "%[1]s must be one of: %[2]s",
	"gte":           "%[1]s must be greater than or equal to %[2]s",
	"lte":           "%[1]s must be less than or equal to %[2]s",
	"gt":            "%[1]s must be greater than %[2]s",
	"lt":            "%[1]s must be less than %[2]s",
	"min":           "%[1]s must be at least %[2]s",
	"max":           "%[1]s must be at most %[2]s",
}

func message(fe validator.FieldError, field string) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	msg := fmt.Sprintf(tmpl, field, fe.Param())
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
