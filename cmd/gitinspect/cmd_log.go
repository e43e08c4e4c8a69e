package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dateLayout matches git's default log date format.
const dateLayout = "Mon Jan 2 15:04:05 2006 -0700"

func newLogCmd(g *globalOptions) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log <commit>",
		Short: "Show commit history reachable from a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("oneline") {
				oneline = g.cfg.History.Oneline
			}
			if !cmd.Flags().Changed("limit") {
				limit = g.cfg.History.Limit
			}
			if limit < 0 {
				return fmt.Errorf("log: limit must not be negative, got %d", limit)
			}

			start, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := g.openRepo()
			if err != nil {
				return err
			}

			grp, ctx := errgroup.WithContext(cmd.Context())
			commits := make(chan *object.Object)
			grp.Go(func() error {
				defer close(commits)
				return r.DB.Log(ctx, start, limit, commits)
			})
			grp.Go(func() error {
				out := cmd.OutOrStdout()
				for obj := range commits {
					if err := printCommit(out, obj, oneline); err != nil {
						return err
					}
				}
				return nil
			})

			if err := grp.Wait(); err != nil {
				return fmt.Errorf("log %s: %w", start, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 = all)")

	return cmd
}

func printCommit(out io.Writer, obj *object.Object, oneline bool) error {
	c, err := obj.Commit()
	if err != nil {
		return err
	}

	if oneline {
		subject, _, _ := strings.Cut(c.Message, "\n")
		_, err := fmt.Fprintf(out, "%s %s\n", obj.Hash.Short(), subject)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", obj.Hash)
	author := c.AuthorIdentity()
	if author.Email != "" {
		fmt.Fprintf(&b, "Author: %s <%s>\n", author.Name, author.Email)
	} else {
		fmt.Fprintf(&b, "Author: %s\n", c.Author)
	}
	if !author.When.IsZero() {
		fmt.Fprintf(&b, "Date:   %s\n", author.When.Format(dateLayout))
	}
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	b.WriteString("\n")
	_, err = io.WriteString(out, b.String())
	return err
}
