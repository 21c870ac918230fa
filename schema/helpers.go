package schema

import (
	"sort"
	"strings"
	"unicode"
)

// JoinKey returns the cross-run identity of an entity: source:full_name_or_id.
func JoinKey(e Entity) string {
	name := e.FullName
	if name == "" {
		name = e.ID
	}
	return string(e.Source) + ":" + name
}

// Slugify converts a label or join key into a filesystem-safe, lowercase form.
// Runs of anything other than letters and digits collapse into one hyphen.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "item"
	}
	return b.String()
}

// TruncateRunes shortens s to at most n runes, appending an ellipsis when cut.
func TruncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	rr := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(rr) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return strings.TrimSpace(string(rr[:n-1])) + "…"
}

// FormatContributors formats the top logins as "alice, bob, carol".
func FormatContributors(contributors []Contributor, limit int) string {
	var logins []string
	for i, c := range contributors {
		if limit > 0 && i >= limit {
			break
		}
		logins = append(logins, c.Login)
	}
	return strings.Join(logins, ", ")
}

// IDsEqual compares two id slices, considering them equal if they contain the same ids
// regardless of order
func IDsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	aSorted := make([]string, len(a))
	copy(aSorted, a)
	sort.Strings(aSorted)

	bSorted := make([]string, len(b))
	copy(bSorted, b)
	sort.Strings(bSorted)

	for i := range aSorted {
		if aSorted[i] != bSorted[i] {
			return false
		}
	}
	return true
}
