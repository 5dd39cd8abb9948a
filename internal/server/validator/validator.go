// Package validator implements the ordered, multi-group structural
// validation of signup, profile and content payloads.
//
// Rules are organised into groups evaluated in a fixed sequence
// (NotBlank, Pattern, Size). Once a field fails a group, the later groups
// are not evaluated for that field, so an empty value is reported as
// required and never also as too short.
package validator

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
)

// Group is a validation stage.
type Group int

const (
	GroupNotBlank Group = iota
	GroupPattern
	GroupSize
)

func (g Group) String() string {
	switch g {
	case GroupNotBlank:
		return "NotBlank"
	case GroupPattern:
		return "Pattern"
	case GroupSize:
		return "Size"
	default:
		return "Unknown"
	}
}

// Sequence is the full pipeline order.
var Sequence = []Group{GroupNotBlank, GroupPattern, GroupSize}

// Violation is a single field-scoped failure.
type Violation struct {
	Field   string
	Message string
	Group   Group
}

// Violations is ordered by group first, then by field declaration order.
type Violations []Violation

// Err returns nil for an empty set and *Error otherwise.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &Error{Violations: v}
}

// Fields returns the names of the failing fields in order.
func (v Violations) Fields() []string {
	out := make([]string, 0, len(v))
	for _, x := range v {
		out = append(out, x.Field)
	}
	return out
}

// Error is the ValidationFailure returned to callers.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error { return common.ErrValidation }

// stage binds the rules of one group for one field.
type stage struct {
	group Group
	rules []validation.Rule
}

type field struct {
	name   string
	value  string
	stages []stage
}

func on(g Group, rules ...validation.Rule) stage {
	return stage{group: g, rules: rules}
}

// check runs groups in the given order. A field that already failed is
// skipped by every later group.
func check(fields []field, groups []Group) Violations {
	if len(groups) == 0 {
		groups = Sequence
	}

	var out Violations
	failed := make(map[string]bool, len(fields))

	for _, g := range groups {
		for _, f := range fields {
			if failed[f.name] {
				continue
			}
			for _, s := range f.stages {
				if s.group != g {
					continue
				}
				if err := validation.Validate(f.value, s.rules...); err != nil {
					out = append(out, Violation{Field: f.name, Message: err.Error(), Group: g})
					failed[f.name] = true
					break
				}
			}
		}
	}

	return out
}

// notBlank fails for empty or whitespace-only strings.
func notBlank(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(message)
		}
		return nil
	})
}
