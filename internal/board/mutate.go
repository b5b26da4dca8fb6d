// Package board holds the interactive state behind the CLI screens: list
// paging, form sessions, the sprint task panel and its transition engine.
package board

import (
	"context"
	"log"

	"github.com/industryview/industryview/internal/apperr"
)

// MutateThenRefetch runs mutate and then refetch exactly once, so the
// owning view never shows a list older than a known mutation. When mutate
// fails with a stale-view error (not found or conflict) the list is
// refetched to reconcile; other failures leave it alone. The mutation
// error takes precedence over a refetch error.
func MutateThenRefetch[R any](ctx context.Context, mutate func(context.Context) (R, error), refetch func(context.Context) error) (R, error) {
	res, err := mutate(ctx)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindConflict) {
			if rerr := refetch(ctx); rerr != nil {
				log.Printf("board: refetch after %v: %v", err, rerr)
			}
		}
		return res, err
	}
	return res, refetch(ctx)
}

// Mutate adapts a mutation with no result for MutateThenRefetch.
func Mutate(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}
