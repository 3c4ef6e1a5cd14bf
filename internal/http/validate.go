package http

import (
	"regexp"
	"strings"
)

var (
	emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// ValidEmail valida la forma general del email. La prueba de control real
// es el código de verificación, acá solo se cortan typos evidentes.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= 254 && emailRE.MatchString(s)
}

// ValidPhone valida un teléfono en forma E.164 laxa.
func ValidPhone(s string) bool {
	return phoneRE.MatchString(strings.TrimSpace(s))
}
