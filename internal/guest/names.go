package guest

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Names maps each category to its ordered companion name slots.
type Names map[Category][]string

func (n Names) Get(cat Category) []string {
	if n == nil {
		return nil
	}
	return n[cat]
}

// Clone deep-copies n, giving every category a non-nil slice.
func (n Names) Clone() Names {
	out := make(Names, len(Categories))
	for _, cat := range Categories {
		src := n.Get(cat)
		dst := make([]string, len(src))
		copy(dst, src)
		out[cat] = dst
	}
	return out
}

func emptyNames() Names {
	out := make(Names, len(Categories))
	for _, cat := range Categories {
		out[cat] = []string{}
	}
	return out
}

// SameName reports whether a and b name the same person: case-insensitive
// with surrounding and repeated inner whitespace ignored. Empty names never
// match.
func SameName(a, b string) bool {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return folder.String(na) == folder.String(nb)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fit pads names with empty slots or truncates it to exactly n entries.
func fit(names []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, names)
	return out
}
