package extract

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates the whole trimmed input against the standard
// local@domain.tld shape. No heuristic repair: exact match or failure.
func Email(text string) (string, error) {
	email := strings.TrimSpace(text)
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: %q is not a valid email address", contractx.ErrValidation, email)
	}
	return email, nil
}
