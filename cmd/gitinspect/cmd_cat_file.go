package main

import (
	"fmt"

	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(g *globalOptions) *cobra.Command {
	var exists, showType, showSize, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-e | -t | -s | -p) <object>",
		Short: "Show the type, size or content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if exists {
				return g.checkExists(args[0])
			}
			_, obj, err := g.readObject(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, obj.Type())
			case showSize:
				fmt.Fprintln(out, obj.Size)
			case pretty:
				return object.Pretty(out, obj)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&exists, "exists", "e", false, "exit with an error unless the object exists")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "show the declared object size")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.MarkFlagsMutuallyExclusive("exists", "type", "size", "pretty")
	cmd.MarkFlagsOneRequired("exists", "type", "size", "pretty")

	return cmd
}

// checkExists looks for the object file only; the object is not decoded.
func (g *globalOptions) checkExists(arg string) error {
	h, err := object.ParseHash(arg)
	if err != nil {
		return err
	}
	r, err := g.openRepo()
	if err != nil {
		return err
	}
	if !r.DB.Has(h) {
		return fmt.Errorf("%w: %s", object.ErrNotFound, h)
	}
	return nil
}
