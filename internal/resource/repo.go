// Package resource implements the generic paginated CRUD repository behind
// every plain collection endpoint (employees, incidents, backlogs, teams).
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
)

// DefaultPerPage is used when a query does not name a page size.
const DefaultPerPage = 10

// Filter maps a query key onto a column.
type Filter struct {
	Column string
	// Like matches with a substring LIKE instead of equality.
	Like bool
	// Bool parses the value as a boolean before comparing.
	Bool bool
}

// Spec describes one collection.
type Spec[T any] struct {
	// Name is the singular resource name used in error messages.
	Name string
	// Filters whitelists the query keys List accepts.
	Filters map[string]Filter
	// Columns whitelists the JSON keys Update may change, mapped to columns.
	Columns map[string]string
	// Required returns the names of missing required fields.
	Required func(*T) []string
	// Check validates field values once required fields are present.
	Check func(*T) []apperr.FieldError
	// Order is the ORDER BY clause for List. Defaults to "id ASC".
	Order string
}

// Query selects one page of a filtered collection.
type Query struct {
	Filters map[string]string
	Page    int
	PerPage int
}

// Repo is a gorm-backed repository for one model type.
type Repo[T any] struct {
	db   *gorm.DB
	spec Spec[T]
}

// New returns a repository for spec.
func New[T any](db *gorm.DB, spec Spec[T]) *Repo[T] {
	if spec.Order == "" {
		spec.Order = "id ASC"
	}
	return &Repo[T]{db: db, spec: spec}
}

// Name returns the resource name.
func (r *Repo[T]) Name() string { return r.spec.Name }

// List returns one page of the collection. Filters with empty values are
// ignored; unknown filter keys are validation errors. Counts reflect the
// filtered set.
func (r *Repo[T]) List(ctx context.Context, q Query) (models.Page[T], error) {
	page, perPage := normalize(q.Page, q.PerPage)

	tx, err := r.applyFilters(r.db.WithContext(ctx).Model(new(T)), q.Filters)
	if err != nil {
		return models.Page[T]{}, err
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return models.Page[T]{}, apperr.Internal(fmt.Errorf("resource: count %s: %w", r.spec.Name, err))
	}

	var items []T
	err = tx.Order(r.spec.Order).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return models.Page[T]{}, apperr.Internal(fmt.Errorf("resource: list %s: %w", r.spec.Name, err))
	}
	return models.NewPage(items, page, perPage, total), nil
}

func (r *Repo[T]) applyFilters(tx *gorm.DB, filters map[string]string) (*gorm.DB, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var bad []apperr.FieldError
	for _, k := range keys {
		v := strings.TrimSpace(filters[k])
		if v == "" {
			continue
		}
		f, ok := r.spec.Filters[k]
		if !ok {
			bad = append(bad, apperr.FieldError{Field: k, Message: "is not a filter"})
			continue
		}
		switch {
		case f.Like:
			tx = tx.Where(f.Column+" LIKE ?", "%"+v+"%")
		case f.Bool:
			b, err := strconv.ParseBool(v)
			if err != nil {
				bad = append(bad, apperr.FieldError{Field: k, Message: "must be true or false"})
				continue
			}
			tx = tx.Where(f.Column+" = ?", b)
		default:
			tx = tx.Where(f.Column+" = ?", v)
		}
	}
	if len(bad) > 0 {
		return nil, apperr.Validation("invalid filter", bad...)
	}
	return tx, nil
}

// Get returns the row with id.
func (r *Repo[T]) Get(ctx context.Context, id uint) (T, error) {
	var item T
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, apperr.NotFound("%s %d not found", r.spec.Name, id)
	}
	if err != nil {
		return item, apperr.Internal(fmt.Errorf("resource: get %s %d: %w", r.spec.Name, id, err))
	}
	return item, nil
}

// Create validates and inserts item.
func (r *Repo[T]) Create(ctx context.Context, item *T) error {
	if r.spec.Required != nil {
		if missing := r.spec.Required(item); len(missing) > 0 {
			return apperr.Required(missing...)
		}
	}
	if r.spec.Check != nil {
		if bad := r.spec.Check(item); len(bad) > 0 {
			return apperr.Validation("invalid "+r.spec.Name, bad...)
		}
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return apperr.Conflict("%s already exists", r.spec.Name)
		}
		return apperr.Internal(fmt.Errorf("resource: create %s: %w", r.spec.Name, err))
	}
	return nil
}

// Update applies a partial patch keyed by JSON field name. Keys absent from
// the patch are left unchanged; keys outside the whitelist are rejected.
func (r *Repo[T]) Update(ctx context.Context, id uint, patch map[string]any) (T, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return current, err
	}

	updates := make(map[string]any, len(patch))
	var bad []apperr.FieldError
	for k, v := range patch {
		col, ok := r.spec.Columns[k]
		if !ok {
			bad = append(bad, apperr.FieldError{Field: k, Message: "cannot be updated"})
			continue
		}
		updates[col] = v
	}
	if len(bad) > 0 {
		sort.Slice(bad, func(i, j int) bool { return bad[i].Field < bad[j].Field })
		return current, apperr.Validation("invalid update", bad...)
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := r.validatePatch(current, patch); err != nil {
		return current, err
	}

	if err := r.db.WithContext(ctx).Model(&current).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return current, apperr.Conflict("%s already exists", r.spec.Name)
		}
		return current, apperr.Internal(fmt.Errorf("resource: update %s %d: %w", r.spec.Name, id, err))
	}
	return r.Get(ctx, id)
}

// validatePatch applies patch to a copy of current and runs the same
// checks Create does, so an edit cannot store what a create would refuse.
func (r *Repo[T]) validatePatch(current T, patch map[string]any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return apperr.Validation("invalid update: " + err.Error())
	}
	patched := current
	if err := json.Unmarshal(raw, &patched); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("invalid update", apperr.FieldError{Field: typeErr.Field, Message: "has the wrong type"})
		}
		return apperr.Validation("invalid update: " + err.Error())
	}
	if r.spec.Required != nil {
		if missing := r.spec.Required(&patched); len(missing) > 0 {
			return apperr.Required(missing...)
		}
	}
	if r.spec.Check != nil {
		if bad := r.spec.Check(&patched); len(bad) > 0 {
			return apperr.Validation("invalid "+r.spec.Name, bad...)
		}
	}
	return nil
}

// Delete soft-deletes the row with id. Deleting a missing or already
// deleted row is a not-found error.
func (r *Repo[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return apperr.Internal(fmt.Errorf("resource: delete %s %d: %w", r.spec.Name, id, result.Error))
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("%s %d not found", r.spec.Name, id)
	}
	return nil
}

func normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate entry")
}
