package detainees

import (
	"regexp"
	"strings"

	pkgerrors "github.com/registropol/registropol-backend/pkg/errors"
)

var cedulaDigitsRe = regexp.MustCompile(`^\d{5,10}$`)

// NormalizeCedula canonicalizes a national ID to "V-12345678" form.
// Bare digits get the V (venezolano) prefix; an existing V or E prefix
// is kept, upper-cased, and separated with a dash.
func NormalizeCedula(raw string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cedula is required")
	}

	prefix := "V"
	switch {
	case strings.HasPrefix(value, "V-") || strings.HasPrefix(value, "E-"):
		prefix = value[:1]
		value = value[2:]
	case strings.HasPrefix(value, "V") || strings.HasPrefix(value, "E"):
		if len(value) > 1 && value[1] >= '0' && value[1] <= '9' {
			prefix = value[:1]
			value = value[1:]
		}
	}

	value = strings.ReplaceAll(value, ".", "")
	if !cedulaDigitsRe.MatchString(value) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cedula must be 5 to 10 digits with an optional V/E prefix")
	}
	return prefix + "-" + value, nil
}
