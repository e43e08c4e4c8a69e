package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

func newVerifyCommitCmd(g *globalOptions) *cobra.Command {
	var keyPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "verify-commit --key <authorized_keys> <commit>",
		Short: "Verify the SSH signature of a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			allowed, err := loadAllowedKeys(keyPath)
			if err != nil {
				return err
			}
			h, err := object.ParseHash(args[0])
			if err != nil {
				return err
			}
			r, err := g.openRepo()
			if err != nil {
				return err
			}
			c, err := r.DB.ReadCommit(h)
			if err != nil {
				return fmt.Errorf("verify-commit: %w", err)
			}

			out := cmd.OutOrStdout()
			if verbose {
				if _, err := out.Write(c.SigningPayload()); err != nil {
					return err
				}
			}
			key, err := object.VerifyCommit(c, allowed)
			if err != nil {
				return fmt.Errorf("verify-commit %s: %w", h, err)
			}
			fmt.Fprintf(out, "Good %q signature for %s with %s key %s\n",
				object.GitSignatureScope, c.AuthorIdentity().Email, key.Type(), ssh.FingerprintSHA256(key))
			return nil
		},
	}

	cmd.Flags().StringVar(&keyPath, "key", "", "file of allowed public keys in authorized_keys format")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the signed commit content before the result")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

// loadAllowedKeys parses every key in an authorized_keys style file.
func loadAllowedKeys(path string) ([]ssh.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read allowed keys: %w", err)
	}

	var keys []ssh.PublicKey
	rest := data
	for len(strings.TrimSpace(string(rest))) > 0 {
		key, _, _, next, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			return nil, fmt.Errorf("parse allowed keys %s: %w", path, err)
		}
		keys = append(keys, key)
		rest = next
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("allowed keys %s: no keys found", path)
	}
	return keys, nil
}
