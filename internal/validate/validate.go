package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSlug   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCode   = regexp.MustCompile(`^[A-Z0-9_-]{2,50}$`)
	rePostal = regexp.MustCompile(`^[A-Za-z0-9 -]{3,20}$`)
	reQ      = regexp.MustCompile(`^[A-Za-z0-9 _'\-]{1,50}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces length and character-class requirements for registration.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// ID validates a simple resource identifier (product/variant/cart item ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Slug(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reSlug.MatchString(s)
}

// DiscountCode normalizes to upper case; codes are case-insensitive on input.
func DiscountCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCode.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty clamps a requested quantity. 0 is meaningful (removes a cart line);
// negatives are not.
func Qty(n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	if n > 99 {
		n = 99
	}
	return n, true
}

func Rating(n int) bool { return n >= 1 && n <= 5 }

func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

// Line validates a free-text address or note field with a max length.
func Line(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return "", false
	}
	return s, true
}
