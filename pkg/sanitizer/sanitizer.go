// Package sanitizer normalizes user input before validation and storage.
package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an email address and collapses
// consecutive dots in the domain part.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	domain := parts[1]
	for strings.Contains(domain, "..") {
		domain = strings.ReplaceAll(domain, "..", ".")
	}

	return parts[0] + "@" + domain
}

// NormalizeUsername lowercases and trims a handle and strips characters
// outside [a-z0-9._-].
func NormalizeUsername(username string) string {
	username = strings.ToLower(strings.TrimSpace(username))

	var sb strings.Builder
	sb.Grow(len(username))
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// UsernameFromEmail derives a default handle from the email local part.
func UsernameFromEmail(email string) string {
	email = NormalizeEmail(email)
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		local = email
	}
	return NormalizeUsername(local)
}

// TrimURL trims whitespace around a URL.
func TrimURL(raw string) string {
	return strings.TrimSpace(raw)
}
