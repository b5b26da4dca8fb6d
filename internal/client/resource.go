package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strconv"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/models"
)

// Page is the paginated list envelope.
type Page[T any] = models.Page[T]

// Filters is a flat key/value filter record. Empty values are not sent.
type Filters map[string]string

// ResourceOpts configures a Resource.
type ResourceOpts[T any] struct {
	Scope Scope
	// AllowedPerPage restricts page sizes; defaults to the standard set.
	AllowedPerPage []int
	// Required lists the required fields missing from an item.
	Required func(T) []string
}

// Resource lists, creates, updates and removes items of one collection.
type Resource[T any] struct {
	c        *Client
	path     string
	scope    Scope
	allowed  []int
	required func(T) []string
}

// NewResource creates a Resource for the collection at path.
func NewResource[T any](c *Client, path string, opts ResourceOpts[T]) *Resource[T] {
	allowed := opts.AllowedPerPage
	if len(allowed) == 0 {
		allowed = config.DefaultAllowedPerPage
	}
	return &Resource[T]{
		c:        c,
		path:     path,
		scope:    opts.Scope,
		allowed:  slices.Clone(allowed),
		required: opts.Required,
	}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string { return r.path }

// AllowedPerPage returns the page sizes List accepts.
func (r *Resource[T]) AllowedPerPage() []int { return slices.Clone(r.allowed) }

// List fetches one page. The scope's project is applied unless filters
// name one explicitly.
func (r *Resource[T]) List(ctx context.Context, filters Filters, page, perPage int) (*Page[T], error) {
	if page < 1 {
		return nil, apperr.Validation("invalid page", apperr.FieldError{Field: "page", Message: "must be at least 1"})
	}
	if !slices.Contains(r.allowed, perPage) {
		return nil, apperr.Validation("invalid per_page", apperr.FieldError{
			Field:   "per_page",
			Message: fmt.Sprintf("must be one of %v", r.allowed),
		})
	}

	q := url.Values{}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	if r.scope.ProjectID != 0 && q.Get("projectId") == "" {
		q.Set("projectId", strconv.FormatUint(uint64(r.scope.ProjectID), 10))
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out Page[T]
	if err := r.c.Do(ctx, http.MethodGet, r.path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches one item.
func (r *Resource[T]) Get(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.c.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates required fields locally, then creates item.
func (r *Resource[T]) Create(ctx context.Context, item T) (*T, error) {
	if err := r.Validate(item); err != nil {
		return nil, err
	}
	var out T
	if err := r.c.Do(ctx, http.MethodPost, r.path, nil, item, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial patch; omitted fields are left unchanged.
func (r *Resource[T]) Update(ctx context.Context, id uint, patch map[string]any) (*T, error) {
	var out T
	if err := r.c.Do(ctx, http.MethodPatch, r.itemPath(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes an item. A row that is already gone is a not-found error.
func (r *Resource[T]) Remove(ctx context.Context, id uint) error {
	return r.c.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

// Validate reports missing required fields without contacting the server.
func (r *Resource[T]) Validate(item T) error {
	if r.required == nil {
		return nil
	}
	if missing := r.required(item); len(missing) > 0 {
		return apperr.Required(missing...)
	}
	return nil
}

func (r *Resource[T]) itemPath(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}
