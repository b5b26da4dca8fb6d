package board

import (
	"context"
	"maps"
	"sync"

	"github.com/industryview/industryview/internal/client"
	"github.com/industryview/industryview/internal/models"
)

// Source is the paginated collection a List reads from.
type Source[T any] interface {
	List(ctx context.Context, filters client.Filters, page, perPage int) (*models.Page[T], error)
	Remove(ctx context.Context, id uint) error
}

// List is the state of one paginated table: filters, the current page and
// the last fetched rows. Every filter or page change refetches.
type List[T any] struct {
	src Source[T]

	mu      sync.Mutex
	filters client.Filters
	pager   Pager
	page    models.Page[T]
	loading bool
}

// NewList creates a List on page 1.
func NewList[T any](src Source[T], perPage int) *List[T] {
	return &List[T]{
		src:     src,
		filters: client.Filters{},
		pager:   Pager{Page: 1, PerPage: perPage},
	}
}

// Refetch loads the current page. When the page no longer exists because
// rows vanished, it falls back to the last page that does, or to page 1
// when the collection is empty.
func (l *List[T]) Refetch(ctx context.Context) error {
	l.mu.Lock()
	filters := maps.Clone(l.filters)
	pager := l.pager
	l.loading = true
	l.mu.Unlock()

	page, err := l.src.List(ctx, filters, pager.Page, pager.PerPage)
	if err == nil && len(page.Items) == 0 && pager.Page > 1 && pager.Clamp(page.PageTotal) {
		page, err = l.src.List(ctx, filters, pager.Page, pager.PerPage)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		return err
	}
	l.pager = pager
	l.page = *page
	return nil
}

// SetFilter sets or clears (empty value) one filter, returns to page 1 and
// refetches.
func (l *List[T]) SetFilter(ctx context.Context, key, value string) error {
	l.mu.Lock()
	if value == "" {
		delete(l.filters, key)
	} else {
		l.filters[key] = value
	}
	l.pager.Page = 1
	l.mu.Unlock()
	return l.Refetch(ctx)
}

// SetFilters replaces every filter at once, returns to page 1 and
// refetches. Empty values are dropped.
func (l *List[T]) SetFilters(ctx context.Context, filters client.Filters) error {
	l.mu.Lock()
	l.filters = client.Filters{}
	for k, v := range filters {
		if v != "" {
			l.filters[k] = v
		}
	}
	l.pager.Page = 1
	l.mu.Unlock()
	return l.Refetch(ctx)
}

// SetPage moves to page n, never past the last known page, and refetches.
func (l *List[T]) SetPage(ctx context.Context, n int) error {
	l.mu.Lock()
	l.pager.Page = n
	if l.page.PageTotal > 0 {
		l.pager.Clamp(l.page.PageTotal)
	} else {
		l.pager.Clamp(1)
	}
	l.mu.Unlock()
	return l.Refetch(ctx)
}

// SetPerPage changes the page size, returns to page 1 and refetches.
func (l *List[T]) SetPerPage(ctx context.Context, n int) error {
	l.mu.Lock()
	l.pager.PerPage = n
	l.pager.Page = 1
	l.mu.Unlock()
	return l.Refetch(ctx)
}

// Delete removes a row and refetches, stepping back a page when the row
// was the last one on its page.
func (l *List[T]) Delete(ctx context.Context, id uint) error {
	_, err := MutateThenRefetch(ctx,
		Mutate(func(ctx context.Context) error {
			if err := l.src.Remove(ctx, id); err != nil {
				return err
			}
			l.mu.Lock()
			l.pager.AfterDelete(len(l.page.Items))
			l.mu.Unlock()
			return nil
		}),
		l.Refetch,
	)
	return err
}

// Page returns the last fetched page.
func (l *List[T]) Page() models.Page[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Items returns the rows of the last fetched page.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page.Items
}

// Pager returns the requested page and size.
func (l *List[T]) Pager() Pager {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager
}

// Filters returns a copy of the active filters.
func (l *List[T]) Filters() client.Filters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.filters)
}

// Loading reports whether a fetch is in flight.
func (l *List[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}
