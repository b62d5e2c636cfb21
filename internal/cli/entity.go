package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
	"github.com/noah-isme/edu-manager/pkg/export"
)

// Field binds one command-line flag to a string field of a request.
type Field[R any] struct {
	Flag  string
	Usage string
	Value func(req *R) *string
	// Reset runs when the flag is set on edit, clearing fields that would
	// otherwise take precedence over it.
	Reset func(req *R)
}

// Entity describes the list/show/add/edit/delete commands of one record type.
type Entity[R any] struct {
	Name     string
	Singular string
	Fields   []Field[R]
	Load     func(ctx context.Context, id int64) (R, error)
	Create   func(ctx context.Context, req R) (int64, error)
	Update   func(ctx context.Context, id int64, req R) error
	Delete   func(ctx context.Context, id int64) error
	Extra    []*cobra.Command
}

type tableFunc func(ctx context.Context, entity string) (export.Dataset, error)

// Command builds the command group for the entity.
func (e Entity[R]) Command(streams *IOStreams, table tableFunc) *cobra.Command {
	group := &cobra.Command{
		Use:   e.Name,
		Short: fmt.Sprintf("Manage %s", e.Name),
	}
	group.AddCommand(e.listCommand(streams, table), e.showCommand(streams), e.addCommand(streams), e.editCommand(streams), e.deleteCommand(streams))
	group.AddCommand(e.Extra...)
	return group
}

func (e Entity[R]) listCommand(streams *IOStreams, table tableFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s, newest first", e.Name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := table(cmd.Context(), e.Name)
			if err != nil {
				return err
			}
			return printTable(streams.Out, data)
		},
	}
}

func (e Entity[R]) showCommand(streams *IOStreams) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show the editable fields of a %s", e.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := e.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			pairs := make([][2]string, 0, len(e.Fields))
			for _, f := range e.Fields {
				pairs = append(pairs, [2]string{f.Flag, *f.Value(&req)})
			}
			return printFields(streams.Out, id, pairs)
		},
	}
}

func (e Entity[R]) addCommand(streams *IOStreams) *cobra.Command {
	var req R
	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Add a %s", e.Singular),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(streams.Out, "created %s %d\n", e.Singular, id)
			return nil
		},
	}
	for _, f := range e.Fields {
		cmd.Flags().StringVar(f.Value(&req), f.Flag, "", f.Usage)
	}
	return cmd
}

func (e Entity[R]) editCommand(streams *IOStreams) *cobra.Command {
	values := make([]string, len(e.Fields))
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: fmt.Sprintf("Edit a %s; flags not given keep their stored value", e.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := e.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			for i, f := range e.Fields {
				if !cmd.Flags().Changed(f.Flag) {
					continue
				}
				if f.Reset != nil {
					f.Reset(&req)
				}
				*f.Value(&req) = values[i]
			}
			if err := e.Update(cmd.Context(), id, req); err != nil {
				return err
			}
			fmt.Fprintf(streams.Out, "updated %s %d\n", e.Singular, id)
			return nil
		},
	}
	for i, f := range e.Fields {
		cmd.Flags().StringVar(&values[i], f.Flag, "", f.Usage)
	}
	return cmd
}

func (e Entity[R]) deleteCommand(streams *IOStreams) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", e.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := streams.Confirm(fmt.Sprintf("Delete %s %d?", e.Singular, id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(streams.Out, "cancelled")
					return nil
				}
			}
			if err := e.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(streams.Out, "deleted %s %d\n", e.Singular, id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}
