package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to user-facing labels
var FieldLabels = map[string]string{
	"fullName":          "Full Name",
	"jobTitle":          "Job Title",
	"phone":             "Phone",
	"email":             "Email address",
	"website":           "Website",
	"experienceInYears": "Experience (In Years)",
	"age":               "Age",
	"skills":            "Skills",
	"bio":               "Bio",
	"showInListings":    "Allow In Search & Listing",
	"imageUrl":          "Image",
	"city":              "City",
	"state":             "State",
	"country":           "Country",
	"pincode":           "Pincode",
	"id":                "Profile",
}

// FieldErrors holds one message per invalid field, keyed by json field name.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fe[k])
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Check validates s against the shared schema and returns FieldErrors on failure.
func Check(s interface{}) error {
	err := Schema().Struct(s)
	if err == nil {
		return nil
	}
	if fe := FromError(err); fe != nil {
		return fe
	}
	return err
}

// FromError converts validator.ValidationErrors to FieldErrors.
// Returns nil when err is not a validation error.
func FromError(err error) FieldErrors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fe := make(FieldErrors, len(validationErrors))
	for _, e := range validationErrors {
		field := rootField(e)
		if _, seen := fe[field]; seen {
			continue
		}
		fe[field] = formatSingleError(e)
	}
	return fe
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// rootField strips the struct prefix and any slice index from the namespace,
// so skills[3] reports against skills.
func rootField(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(rootField(e))
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must have at least %s entries", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must have at most %s entries", label, param)

	case "gt":
		return fmt.Sprintf("%s is missing", label)

	case "email":
		return "Invalid email"

	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)

	case "valid_phone":
		return fmt.Sprintf("%s must be 7-15 digits, optionally starting with +", label)

	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)

	case "numeric_text":
		if bounds := strings.Fields(param); len(bounds) == 2 {
			return fmt.Sprintf("%s must be a number between %s and %s", label, bounds[0], bounds[1])
		}
		return fmt.Sprintf("%s must be a number", label)

	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts camelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
