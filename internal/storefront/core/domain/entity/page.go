package entity

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Page struct {
	Number  int
	PerPage int
}

// Normalize clamps the page into usable bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.PerPage
}

type PageResult[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
}
