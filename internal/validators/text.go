package validators

import (
	"strings"
	"unicode/utf8"
)

const MaxNameLength = 100

// Name trims raw and reports whether it is a usable display name.
func Name(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", false
	}
	return name, true
}
