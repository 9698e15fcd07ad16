package cashflow

// Kind classifies a section as money coming in or going out. The cumulative
// column accumulates income minus expense month by month.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Section is a named grouping of cashflow items. A section with no items
// holds a directly editable cell per month. A non-zero Markup derives an
// extra displayed row as total * (1 + Markup/100); the derived row is
// computed on demand and never stored.
type Section struct {
	Id       int64
	Name     string
	Kind     Kind
	Markup   float64
	Position int
	Items    []Item
}

// Item is one cashflow line inside a section.
type Item struct {
	Id        int64
	SectionId int64
	Name      string
}
