package budget

// Category is a named grouping of budget concepts. A category with no
// concepts holds a directly editable cell per month instead of a computed
// total.
type Category struct {
	Id       int64
	Name     string
	Position int
	Concepts []Concept
}

// Concept is one budget line inside a category.
//
// A non-indexed concept has one lazily created editable cell per active
// month. An indexed concept stores a single base value; its monthly values
// are derived by compounding the configured inflation rates from the first
// active month onward and are never stored per month.
type Concept struct {
	Id         int64
	CategoryId int64
	Name       string
	// BaseValue is the amount an indexed concept starts from. It lives in its
	// own column, independent of which months are active.
	BaseValue        float64
	FirstActiveMonth int
	ActiveMonths     []int
	Indexed          bool
}

// IsActiveIn reports whether the concept participates in the given month.
// A concept with no configured active months is active everywhere.
func (c Concept) IsActiveIn(month int) bool {
	if len(c.ActiveMonths) == 0 {
		return true
	}
	for _, m := range c.ActiveMonths {
		if m == month {
			return true
		}
	}
	return false
}
