package main

import (
	"fmt"

	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls-tree <tree-or-commit>",
		Short: "List the entries of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, obj, err := g.readObject(args[0])
			if err != nil {
				return err
			}

			if c, ok := obj.Payload.(*object.Commit); ok {
				obj, err = r.DB.ReadObject(c.TreeHash)
				if err != nil {
					return fmt.Errorf("ls-tree: root tree of %s: %w", args[0], err)
				}
			}
			if _, err := obj.Tree(); err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			return object.Pretty(cmd.OutOrStdout(), obj)
		},
	}
}
