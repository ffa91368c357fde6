package domain

import (
	"regexp"
	"strings"
)

// Accepted MAC notations: colon or dash separated pairs, dot separated
// quads (Cisco style), or 12 bare hex digits.
var macRegexp = regexp.MustCompile(
	`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$` +
		`|^([0-9A-Fa-f]{4}\.){2}[0-9A-Fa-f]{4}$` +
		`|^[0-9A-Fa-f]{12}$`)

// CanonicalMAC validates a device identifier and normalizes it to the
// canonical uppercase colon-separated form (XX:XX:XX:XX:XX:XX).
func CanonicalMAC(raw string) (string, bool) {
	if !macRegexp.MatchString(raw) {
		return "", false
	}

	hex := strings.ToUpper(strings.NewReplacer(":", "", "-", "", ".", "").Replace(raw))

	var b strings.Builder
	b.Grow(17)
	for i := 0; i < len(hex); i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return b.String(), true
}
