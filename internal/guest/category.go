package guest

import "fmt"

// Category is an age bracket a party's seats are granted in.
type Category string

const (
	Adults  Category = "adults"
	Teens   Category = "teens"
	Kids    Category = "kids"
	Infants Category = "infants"
)

// Categories lists every category in main-category priority order.
var Categories = []Category{Adults, Teens, Kids, Infants}

func (c Category) Valid() bool {
	switch c {
	case Adults, Teens, Kids, Infants:
		return true
	}
	return false
}

// Label is the capitalised form used in placeholder seat names.
func (c Category) Label() string {
	switch c {
	case Adults:
		return "Adults"
	case Teens:
		return "Teens"
	case Kids:
		return "Kids"
	case Infants:
		return "Infants"
	}
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Counts maps each category to a seat count. Missing keys read as zero.
type Counts map[Category]int

func (c Counts) Get(cat Category) int {
	if c == nil {
		return 0
	}
	return c[cat]
}

func (c Counts) Total() int {
	total := 0
	for _, cat := range Categories {
		total += c.Get(cat)
	}
	return total
}

// Clone returns a copy with every category present.
func (c Counts) Clone() Counts {
	out := make(Counts, len(Categories))
	for _, cat := range Categories {
		out[cat] = c.Get(cat)
	}
	return out
}

// MainCategory returns the first category, in priority order, with a
// positive count. ok is false when every count is zero.
func MainCategory(c Counts) (cat Category, ok bool) {
	for _, cat := range Categories {
		if c.Get(cat) > 0 {
			return cat, true
		}
	}
	return "", false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
