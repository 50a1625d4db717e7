package models

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "addressbook/pkg/domain-errors"
)

const (
	MinZip = 10000
	MaxZip = 99999

	defaultPhoneDigits = 10
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s.][^@\s]*\.[^@\s.]+$`)

// ValidationError names the first field of an entry that breaks a rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FieldName reports the offending field for transport error envelopes.
func (e *ValidationError) FieldName() string {
	return e.Field
}

func (e *ValidationError) Unwrap() error {
	return dErrors.New(dErrors.CodeValidation, e.Reason)
}

// PhoneRule decides whether a phone number is acceptable.
type PhoneRule func(phone string) bool

// MinDigits accepts phone numbers containing at least n decimal digits,
// whatever the separators: "555-555-1234" and "+1 555 555-1234" both pass.
func MinDigits(n int) PhoneRule {
	return func(phone string) bool {
		digits := 0
		for _, r := range phone {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		return digits >= n
	}
}

// AnyPhone accepts every phone number, including an empty one.
func AnyPhone(string) bool { return true }

// PhoneRuleByName resolves a configured rule name.
func PhoneRuleByName(name string) (PhoneRule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "digits10":
		return MinDigits(defaultPhoneDigits), nil
	case "any":
		return AnyPhone, nil
	default:
		return nil, fmt.Errorf("unknown phone rule %q", name)
	}
}

// Validator gatekeeps entries before they reach the gateway or the directory.
// The zero value uses the default phone rule.
type Validator struct {
	Phone PhoneRule
}

// Validate checks the rules in a fixed order and reports the first violation.
func (v Validator) Validate(e Entry) error {
	switch {
	case e.Name.First == "":
		return &ValidationError{Field: "first_name", Reason: "first name cannot be empty"}
	case e.Name.Last == "":
		return &ValidationError{Field: "last_name", Reason: "last name cannot be empty"}
	case e.Address.Street == "":
		return &ValidationError{Field: "street", Reason: "street address cannot be empty"}
	case e.Address.City == "":
		return &ValidationError{Field: "city", Reason: "city cannot be empty"}
	case utf8.RuneCountInString(e.Address.State) != 2:
		return &ValidationError{Field: "state", Reason: "state must be a 2 letter code"}
	case e.Address.Zip < MinZip || e.Address.Zip > MaxZip:
		return &ValidationError{Field: "zip", Reason: "zip code must be a 5 digit number"}
	case !v.phoneRule()(e.Phone):
		return &ValidationError{Field: "phone", Reason: "phone number is not valid"}
	case !emailPattern.MatchString(e.Email):
		return &ValidationError{Field: "email", Reason: "email must look like name@domain.ext"}
	}
	return nil
}

func (v Validator) phoneRule() PhoneRule {
	if v.Phone == nil {
		return MinDigits(defaultPhoneDigits)
	}
	return v.Phone
}

// Validate checks e with the default rules.
func Validate(e Entry) error {
	return Validator{}.Validate(e)
}
