package main

import (
	"context"
	"fmt"
	"io"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/board"
	"github.com/industryview/industryview/internal/client"
	"github.com/spf13/cobra"
)

// listFlags are the paging and filter flags of a collection list command.
type listFlags struct {
	page    int
	perPage int
	filters map[string]*string
}

func newListFlags(cmd *cobra.Command, filters map[string]string) *listFlags {
	f := &listFlags{filters: map[string]*string{}}
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.perPage, "per-page", 0, "rows per page (default from config)")
	for key, usage := range filters {
		f.filters[key] = cmd.Flags().String(key, "", usage)
	}
	return f
}

// runList loads one page of res through a board list and prints each row.
func runList[T any](ctx context.Context, out io.Writer, res *client.Resource[T], defaultPerPage int, f *listFlags, row func(T) string) error {
	perPage := f.perPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	list := board.NewList[T](res, perPage)
	filters := client.Filters{}
	for key, v := range f.filters {
		filters[key] = *v
	}
	if err := list.SetFilters(ctx, filters); err != nil {
		return err
	}
	if f.page > 1 {
		if err := list.SetPage(ctx, f.page); err != nil {
			return err
		}
	}
	p := list.Page()
	for _, item := range list.Items() {
		fmt.Fprintln(out, row(item))
	}
	if len(p.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No results."))
	}
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d/%d, %d total", p.CurPage, max(p.PageTotal, 1), p.ItemsTotal)))
	return nil
}

// runCreate saves item through a create form and reports field errors.
func runCreate[T any](ctx context.Context, out io.Writer, res *client.Resource[T], item T) (*T, error) {
	form := board.NewFormSession[T](res, func(context.Context) error { return nil })
	if err := form.OpenCreate(item); err != nil {
		return nil, err
	}
	saved, err := form.Save(ctx)
	if err != nil {
		printFieldErrors(out, form.FieldErrors())
		return nil, err
	}
	return saved, nil
}

// runEdit applies edit to the item with id through an edit form.
func runEdit[T any](ctx context.Context, out io.Writer, res *client.Resource[T], id uint, edit func(*T)) (*T, error) {
	original, err := res.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	form := board.NewFormSession[T](res, func(context.Context) error { return nil })
	if err := form.OpenEdit(id, *original); err != nil {
		return nil, err
	}
	if err := form.Edit(edit); err != nil {
		return nil, err
	}
	saved, err := form.Save(ctx)
	if err != nil {
		printFieldErrors(out, form.FieldErrors())
		return nil, err
	}
	return saved, nil
}

func printFieldErrors(out io.Writer, fields []apperr.FieldError) {
	for _, f := range fields {
		fmt.Fprintf(out, "  %s %s\n", warnStyle.Render(f.Field), f.Message)
	}
}

func newRemoveCmd[T any](noun string, resource func(*remote) *client.Resource[T]) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := loadRemote(configPath)
			if err != nil {
				return err
			}
			if err := resource(r).Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s #%d\n", noun, id)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
