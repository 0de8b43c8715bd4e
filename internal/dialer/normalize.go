// Package dialer places one outbound call per phone number, sequentially, and reports a result per number.
package dialer

import (
	"regexp"
	"strings"
)

// e164Pattern matches a normalized E.164 number: '+', a non-zero country digit, 8 to 15 digits total.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// separators are stripped before validation so "+1 (555) 123-4567" is accepted.
var separators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "\t", "")

// Normalize strips common separators and reports whether the result is a valid E.164 number.
func Normalize(raw string) (string, bool) {
	number := separators.Replace(strings.TrimSpace(raw))
	if !e164Pattern.MatchString(number) {
		return number, false
	}
	return number, true
}
