package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

// Required fails when value is empty after trimming whitespace.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MinLen fails when value is shorter than min bytes.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters long", min)},
	}
}

// MaxLen fails when value is longer than max bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ValidEmail fails unless value parses as a bare email address.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			parts := strings.Split(addr.Address, "@")
			return len(parts) == 2 && strings.Contains(parts[1], ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

var usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{2,29}$`)

// ValidUsername fails unless value is a lowercase handle of 3-30 characters
// starting with a letter or digit.
func ValidUsername(field, value string) Rule {
	return Rule{
		Check: func() bool { return usernameRegex.MatchString(value) },
		Error: ValidationError{Field: field, Message: "must be 3-30 lowercase letters, digits, dots, dashes or underscores"},
	}
}

// ValidURL fails unless value is an absolute http(s) URL.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.Parse(value)
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		Error: ValidationError{Field: field, Message: "must be a valid http(s) URL"},
	}
}

// StrongPassword fails unless value is 8-128 bytes with at least two
// character classes (lower, upper, digit, symbol).
func StrongPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < 8 || len(value) > 128 {
				return false
			}
			var lower, upper, digit, symbol bool
			for _, r := range value {
				switch {
				case r >= 'a' && r <= 'z':
					lower = true
				case r >= 'A' && r <= 'Z':
					upper = true
				case r >= '0' && r <= '9':
					digit = true
				default:
					symbol = true
				}
			}
			classes := 0
			for _, ok := range []bool{lower, upper, digit, symbol} {
				if ok {
					classes++
				}
			}
			return classes >= 2
		},
		Error: ValidationError{Field: field, Message: "must be 8-128 characters with at least two character classes"},
	}
}

// OneOf fails unless value is one of the allowed choices.
func OneOf(field, value string, allowed ...string) Rule {
	return Rule{
		Check: func() bool {
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Error: ValidationError{Field: field, Message: "must be one of: " + strings.Join(allowed, ", ")},
	}
}
