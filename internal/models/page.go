package models

// Page is the paginated list envelope shared by every collection endpoint.
type Page[T any] struct {
	Items         []T   `json:"items"`
	CurPage       int   `json:"curPage"`
	PerPage       int   `json:"perPage"`
	ItemsReceived int   `json:"itemsReceived"`
	ItemsTotal    int64 `json:"itemsTotal"`
	PageTotal     int   `json:"pageTotal"`
}

// NewPage wraps one page of items with its counters.
func NewPage[T any](items []T, page, perPage int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		CurPage:       page,
		PerPage:       perPage,
		ItemsReceived: len(items),
		ItemsTotal:    total,
		PageTotal:     PageCount(total, perPage),
	}
}

// PageCount is ceil(total/perPage), 0 for an empty set.
func PageCount(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
