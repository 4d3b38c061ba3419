package repository

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page selects a window of a list result. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

// NewPage builds a page, falling back to the defaults for out-of-range values
func NewPage(page, limit int) Page {
	return Page{Page: page, Limit: limit}.normalize()
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset is the number of rows skipped before the page
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Result is one page of rows plus the total across all pages
type Result[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}
