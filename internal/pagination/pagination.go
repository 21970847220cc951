// Package pagination computes page windows over an ordered collection.
package pagination

const (
	// DefaultPageSize is used whenever a caller passes a non-positive page size.
	DefaultPageSize = 10
	// MaxPageSize caps the page size a caller can ask for.
	MaxPageSize = 100
)

// Window is the offset/limit pair for one 1-indexed page.
type Window struct {
	Page       int `json:"page"`
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Compute derives the window for page out of totalCount items. TotalPages is at least 1,
// so an empty collection still has a (blank) first page. Page sizes above MaxPageSize
// are clamped.
func Compute(totalCount, page, pageSize int) Window {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if totalCount < 0 {
		totalCount = 0
	}
	totalPages := totalCount / pageSize
	if totalCount%pageSize != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}
	offset := 0
	if page > 1 && page <= totalPages {
		offset = (page - 1) * pageSize
	}
	return Window{
		Page:       page,
		Offset:     offset,
		Limit:      pageSize,
		TotalPages: totalPages,
	}
}

// InRange reports whether the window's page exists. Out-of-range pages are empty, not errors.
func (w Window) InRange() bool {
	return w.Page >= 1 && w.Page <= w.TotalPages
}
