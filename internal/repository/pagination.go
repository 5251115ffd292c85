package repository

// Page is a limit/offset window over an already ordered slice.
type Page struct {
	Limit  int
	Offset int
}

// PageResult carries one window and the total it was cut from.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// Sanitize clamps the window to sane bounds.
func (p Page) Sanitize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Paginate cuts items to the window. Records are listed whole because every
// statistic needs the full season, so paging happens after the read.
func Paginate[T any](items []T, p Page) PageResult[T] {
	p = p.Sanitize()
	res := PageResult[T]{Total: len(items), Items: []T{}}
	if p.Offset >= len(items) {
		return res
	}
	end := min(p.Offset+p.Limit, len(items))
	res.Items = append(res.Items, items[p.Offset:end]...)
	return res
}
