package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/gitinspect/pkg/config"
	"github.com/odvcencio/gitinspect/pkg/logging"
	"github.com/odvcencio/gitinspect/pkg/object"
	"github.com/odvcencio/gitinspect/pkg/repo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOptions carries persistent flags and what they load.
type globalOptions struct {
	gitDir     string
	configPath string
	logFormat  string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "gitinspect",
		Short:         "Read-only inspection of a git object store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.gitDir, "git-dir", "", "path to the object store (default: discover .git)")
	flags.StringVar(&g.configPath, "config", config.FileName, "path to the settings file")
	flags.StringVar(&g.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCatFileCmd(g))
	root.AddCommand(newLogCmd(g))
	root.AddCommand(newLsTreeCmd(g))
	root.AddCommand(newVerifyCommitCmd(g))
	return root
}

func (g *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	g.logger = logging.New(cmd.ErrOrStderr())
	if err := logging.Configure(g.logger, cfg.Logging.Format, cfg.Logging.Level); err != nil {
		return fmt.Errorf("config logging: %w", err)
	}
	if err := logging.Configure(g.logger, g.logFormat, g.logLevel); err != nil {
		return err
	}
	return nil
}

func (g *globalOptions) openRepo() (*repo.Repo, error) {
	opts := []object.Option{
		object.WithLogger(g.logger),
		object.WithCacheSize(g.cfg.CacheSize),
	}
	gitDir := g.gitDir
	if gitDir == "" {
		gitDir = g.cfg.GitDir
	}
	if gitDir != "" {
		return repo.OpenGitDir(gitDir, opts...)
	}
	return repo.Open(".", opts...)
}

// readObject opens the repository and reads the object named by arg.
func (g *globalOptions) readObject(arg string) (*repo.Repo, *object.Object, error) {
	h, err := object.ParseHash(arg)
	if err != nil {
		return nil, nil, err
	}
	r, err := g.openRepo()
	if err != nil {
		return nil, nil, err
	}
	obj, err := r.DB.ReadObject(h)
	if err != nil {
		return nil, nil, err
	}
	return r, obj, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gitinspect "+version)
		},
	}
}
