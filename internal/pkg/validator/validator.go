package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// UK postcode validation. Lenient on purpose: an outward code plus an
// optional inward code, with or without the separating space. Coverage
// decisions belong to route-rule matching, not to this syntax check.
var postcodeRegex = regexp.MustCompile(`^[A-Za-z]{1,2}[0-9][A-Za-z0-9]?\s*([0-9][A-Za-z]{2})?$`)

func IsValidPostcode(postcode string) bool {
	return postcodeRegex.MatchString(strings.TrimSpace(postcode))
}

// Phone number validation: UK formats, all digits after stripping
// separators, starting 07/01/02/03 or +44.
func IsValidPhoneNumber(phone string) bool {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	if strings.HasPrefix(phone, "+44") {
		phone = "0" + strings.TrimPrefix(phone, "+44")
	}

	if len(phone) < 10 || len(phone) > 11 {
		return false
	}

	if strings.HasPrefix(phone, "07") ||
		strings.HasPrefix(phone, "01") ||
		strings.HasPrefix(phone, "02") ||
		strings.HasPrefix(phone, "03") {
		return IsNumeric(phone)
	}

	return false
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
