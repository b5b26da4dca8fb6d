package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/industryview/industryview/internal/apperr"
)

// FormState is the lifecycle of a FormSession.
type FormState int

const (
	FormClosed FormState = iota
	FormOpen
	FormSaving
)

func (s FormState) String() string {
	switch s {
	case FormClosed:
		return "closed"
	case FormOpen:
		return "open"
	case FormSaving:
		return "saving"
	}
	return fmt.Sprintf("FormState(%d)", int(s))
}

// FormMode tells whether an open form creates or edits.
type FormMode int

const (
	ModeCreate FormMode = iota + 1
	ModeEdit
)

// Errors returned by FormSession.
var (
	ErrFormOpen   = errors.New("board: a form is already open")
	ErrFormClosed = errors.New("board: no form is open")
	ErrFormSaving = errors.New("board: save already in progress")
)

// Saver persists form drafts.
type Saver[T any] interface {
	Create(ctx context.Context, item T) (*T, error)
	Update(ctx context.Context, id uint, patch map[string]any) (*T, error)
	Validate(item T) error
}

// readOnlyFields are never sent in an edit patch.
var readOnlyFields = map[string]bool{"id": true, "createdAt": true, "updatedAt": true}

// FormSession is the single create-or-edit form of one list. Required
// fields are checked before any request; a failed save keeps the form
// open with the error; a successful save closes it and refetches the
// owning list once.
type FormSession[T any] struct {
	saver   Saver[T]
	refetch func(context.Context) error

	mu          sync.Mutex
	state       FormState
	mode        FormMode
	id          uint
	original    T
	draft       T
	touched     bool
	fieldErrors []apperr.FieldError
	formError   string
}

// NewFormSession creates a closed session saving through saver and
// refreshing the owning list with refetch.
func NewFormSession[T any](saver Saver[T], refetch func(context.Context) error) *FormSession[T] {
	return &FormSession[T]{saver: saver, refetch: refetch}
}

// OpenCreate opens a create form seeded with initial.
func (f *FormSession[T]) OpenCreate(initial T) error {
	return f.open(ModeCreate, 0, initial)
}

// OpenEdit opens an edit form for the item with id.
func (f *FormSession[T]) OpenEdit(id uint, original T) error {
	return f.open(ModeEdit, id, original)
}

func (f *FormSession[T]) open(mode FormMode, id uint, item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FormClosed {
		return ErrFormOpen
	}
	f.state = FormOpen
	f.mode = mode
	f.id = id
	f.original = item
	f.draft = item
	f.touched = false
	f.fieldErrors = nil
	f.formError = ""
	return nil
}

// Edit changes the draft.
func (f *FormSession[T]) Edit(fn func(*T)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FormClosed:
		return ErrFormClosed
	case FormSaving:
		return ErrFormSaving
	}
	fn(&f.draft)
	return nil
}

// Cancel closes an open form without saving.
func (f *FormSession[T]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSaving {
		return ErrFormSaving
	}
	f.state = FormClosed
	return nil
}

// Save validates and submits the draft. Only one save runs at a time.
func (f *FormSession[T]) Save(ctx context.Context) (*T, error) {
	f.mu.Lock()
	switch f.state {
	case FormClosed:
		f.mu.Unlock()
		return nil, ErrFormClosed
	case FormSaving:
		f.mu.Unlock()
		return nil, ErrFormSaving
	}
	draft := f.draft
	if err := f.saver.Validate(draft); err != nil {
		f.touched = true
		f.fieldErrors = apperr.FieldsOf(err)
		f.formError = apperr.UserMessage(err)
		f.mu.Unlock()
		return nil, err
	}
	mode, id, original := f.mode, f.id, f.original
	f.state = FormSaving
	f.mu.Unlock()

	var saved *T
	var err error
	if mode == ModeCreate {
		saved, err = f.saver.Create(ctx, draft)
	} else {
		var patch map[string]any
		patch, err = diffPatch(original, draft)
		if err == nil {
			saved, err = f.saver.Update(ctx, id, patch)
		}
	}

	f.mu.Lock()
	if err != nil {
		f.state = FormOpen
		f.touched = true
		f.fieldErrors = apperr.FieldsOf(err)
		f.formError = apperr.UserMessage(err)
		f.mu.Unlock()
		return nil, err
	}
	f.state = FormClosed
	f.fieldErrors = nil
	f.formError = ""
	f.mu.Unlock()

	return saved, f.refetch(ctx)
}

// State returns the lifecycle state.
func (f *FormSession[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Mode returns whether the form creates or edits.
func (f *FormSession[T]) Mode() FormMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Draft returns the current draft.
func (f *FormSession[T]) Draft() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Touched reports whether a save was attempted and rejected.
func (f *FormSession[T]) Touched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// FieldErrors returns the per-field errors of the last rejected save.
func (f *FormSession[T]) FieldErrors() []apperr.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrors
}

// Error returns the form-level message of the last rejected save.
func (f *FormSession[T]) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formError
}

// diffPatch returns the JSON fields of draft that differ from original.
func diffPatch[T any](original, draft T) (map[string]any, error) {
	before, err := toFields(original)
	if err != nil {
		return nil, err
	}
	after, err := toFields(draft)
	if err != nil {
		return nil, err
	}
	patch := map[string]any{}
	for k, v := range after {
		if readOnlyFields[k] {
			continue
		}
		if old, ok := before[k]; !ok || !reflect.DeepEqual(old, v) {
			patch[k] = v
		}
	}
	return patch, nil
}

func toFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("board: encode draft: %w", err))
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperr.Internal(fmt.Errorf("board: decode draft: %w", err))
	}
	return out, nil
}
