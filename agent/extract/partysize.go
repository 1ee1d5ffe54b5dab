package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tsukimori/yoyaku-agent/agent/contract"
)

var digitRun = regexp.MustCompile(`\d+`)

// kanjiSizes is the small-vocabulary fallback when no digits appear.
var kanjiSizes = []struct {
	word string
	size int
}{
	{"一", 1},
	{"二", 2},
	{"三", 3},
	{"四", 4},
	{"五", 5},
	{"六", 6},
}

// PartySize extracts the party size from free text: the first run of
// decimal digits wins, then the ordinal vocabulary for 1..6.
func PartySize(text string) (int, error) {
	if m := digitRun.FindString(text); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil && n > 0 {
			return n, nil
		}
		return 0, fmt.Errorf("%w: party size %q is not positive", contractx.ErrValidation, m)
	}

	for _, k := range kanjiSizes {
		if strings.Contains(text, k.word) {
			return k.size, nil
		}
	}

	return 0, fmt.Errorf("%w: no party size in %q", contractx.ErrValidation, text)
}
