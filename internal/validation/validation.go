package validation

import (
	"html"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Field limits.
const (
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MaxPasswordBytes = 72 // bcrypt ignores anything longer
	MaxCommentLength = 2000
	MaxURLLength     = 2048
)

// strictPolicy strips every tag and attribute.
var strictPolicy = bluemonday.StrictPolicy()

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}
	if len(urlStr) > MaxURLLength {
		return false, "URL is too long"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// NormalizeThumbnail trims raw and falls back to def when it is empty.
func NormalizeThumbnail(raw, def string) string {
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return def
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address such as user@example.com.
func ValidateEmail(email string) (bool, string) {
	if email == "" {
		return false, "Email is required"
	}
	if len(email) > MaxEmailLength {
		return false, "Email is too long"
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return false, "Invalid email address"
	}

	return true, ""
}

// ValidateName checks a display name.
func ValidateName(name string) (bool, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, "Name is required"
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return false, "Name is too long"
	}
	return true, ""
}

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(password, again string) (bool, string) {
	if password == "" {
		return false, "Password is required"
	}
	if len(password) > MaxPasswordBytes {
		return false, "Password is too long"
	}
	if password != again {
		return false, "Passwords do not match"
	}
	return true, ""
}

// Required reports the first field whose value is blank. fields alternates
// label and value.
func Required(fields ...string) (bool, string) {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return false, fields[i] + " is required"
		}
	}
	return true, ""
}

// SanitizeComment reduces a comment body to plain text. Markup is removed and
// entities are decoded so the template escapes the text once on output.
func SanitizeComment(text string) (string, bool, string) {
	clean := html.UnescapeString(strictPolicy.Sanitize(text))
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return "", false, "Comment is required"
	}
	if utf8.RuneCountInString(clean) > MaxCommentLength {
		return "", false, "Comment is too long"
	}
	return clean, true, ""
}
