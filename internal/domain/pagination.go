package domain

// Pagination tracks the page window over a result set
type Pagination struct {
	CurrentPage  int
	TotalItems   int
	ItemsPerPage int
}

// TotalPages is ceil(TotalItems / ItemsPerPage)
func (p Pagination) TotalPages() int {
	if p.ItemsPerPage <= 0 || p.TotalItems <= 0 {
		return 0
	}
	return (p.TotalItems + p.ItemsPerPage - 1) / p.ItemsPerPage
}

// LastPage is the highest page a caller may request; at least 1
func (p Pagination) LastPage() int {
	return max(1, p.TotalPages())
}

// Valid reports whether page lies in [1, TotalPages]. An empty result set
// still has page 1.
func (p Pagination) Valid(page int) bool {
	return page >= 1 && page <= p.LastPage()
}

// Clamp pulls CurrentPage back into range
func (p Pagination) Clamp() Pagination {
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if last := p.LastPage(); p.CurrentPage > last {
		p.CurrentPage = last
	}
	return p
}
