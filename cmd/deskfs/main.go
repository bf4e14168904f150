package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"deskfs/internal/config"
	"deskfs/internal/fusefs"
	"deskfs/internal/launcher"
	"deskfs/internal/logging"
	"deskfs/internal/metrics"
	"deskfs/internal/shell"
	"deskfs/internal/snapshot"
	"deskfs/internal/terminal"
	"deskfs/internal/vfs"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

var (
	logger = logging.GetLogger()
)

// errCommandFailed makes the process exit non-zero after the command has
// already printed its own diagnostic.
var errCommandFailed = errors.New("command failed")

// app carries state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	seedPath   string
	verbose    bool

	cfg  *config.Config
	tree *vfs.FileSystem
}

// setup loads configuration and seeds the filesystem. Flags win over the
// config file and the environment.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.seedPath != "" {
		cfg.Seed.Path = a.seedPath
	}
	a.cfg = cfg

	logger.SetLevel(logging.ParseLevel(cfg.Log.Level))
	if a.verbose {
		logger.SetLevel(logging.LevelDebug)
	}

	if cfg.Seed.Path == "" {
		logger.Debug("Seeding filesystem from the built-in desktop tree")
		a.tree = vfs.NewDefault()
		return nil
	}

	logger.Debug("Seeding filesystem from %s", cfg.Seed.Path)
	tmpl, err := snapshot.Load(cfg.Seed.Path)
	if err != nil {
		return err
	}
	tree, err := vfs.New(tmpl)
	if err != nil {
		return fmt.Errorf("invalid seed %s: %w", cfg.Seed.Path, err)
	}
	a.tree = tree
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func buildRootCommand() *cobra.Command {
	a := &app{}

	var rootCmd = &cobra.Command{
		Use:           "deskfs",
		Short:         "Virtual desktop filesystem with a terminal",
		Long:          "Virtual desktop filesystem with a terminal.\n\nThe tree lives in memory and is seeded from a snapshot file or the built-in desktop.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&a.seedPath, "seed", "", "Path to a JSON or YAML snapshot to seed the filesystem from")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		shellCommand(a),
		execCommand(a),
		openCommand(a),
		mountCommand(a),
		seedCommand(a),
		versionCommand(),
	)
	return rootCmd
}

func shellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive terminal session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := shell.NewEngine()
			session := terminal.NewSession(a.tree, engine, a.cfg.Terminal.User, a.cfg.Terminal.Host)

			interactive := isTerminal(cmd.InOrStdin())
			repl := &terminal.REPL{
				Session:     session,
				Intro:       terminal.Intro(engine),
				Interactive: interactive,
				Color:       interactive && a.cfg.Terminal.Color,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return repl.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func execCommand(a *app) *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "exec <command line>",
		Short: "Run a single terminal command",
		Long:  "Run a single terminal command and print its output.\n\nExit codes:\n  0 - Success\n  1 - The command reported an error",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := shell.NewEngine().Execute(cmd.Context(), strings.Join(args, " "), a.tree, vfs.Resolve(cwd, vfs.Root))
			if err != nil {
				return err
			}
			if res.Output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			}
			if res.Failed() {
				return errCommandFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cwd, "cwd", vfs.Root, "Working directory to run the command in")
	return cmd
}

func openCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Show what double-clicking an entry does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := launcher.Open(a.tree, launcher.DefaultAssociations(), args[0])
			if err != nil {
				return err
			}
			target := action.App
			if target == "" {
				target = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", action.Kind, target, action.Path, action.Title)
			return nil
		},
	}
}

func mountCommand(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mount [mountpoint]",
		Short: "Serve the filesystem over FUSE until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mountPoint := a.cfg.Mount.Point
			if len(args) == 1 {
				mountPoint = args[0]
			}
			if mountPoint == "" {
				return errors.New("mount point is required")
			}
			mountPoint = filepath.Clean(mountPoint)
			if metricsAddr == "" {
				metricsAddr = a.cfg.Mount.MetricsAddr
			}

			unsubscribe := a.tree.SubscribeFunc(func() {
				logger.Debug("Filesystem changed")
			})
			defer unsubscribe()

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           metricsMux(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					logger.Info("Serving metrics on %s", metricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Metrics server error: %v", err)
					}
				}()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(ctx)
				}()
			}

			fs := fusefs.New(a.tree, fusefs.Options{
				UID:        a.cfg.Mount.UID,
				GID:        a.cfg.Mount.GID,
				AllowOther: a.cfg.Mount.AllowOther,
			})
			if err := fs.Mount(mountPoint); err != nil {
				return err
			}

			logger.Debug("Setting up signal handlers...")
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case sig := <-sigChan:
				logger.Info("Received signal %v", sig)
				if err := fs.Unmount(mountPoint); err != nil {
					return fmt.Errorf("unmount %s: %w", mountPoint, err)
				}
				<-fs.Done()
			case err := <-fs.Done():
				if err != nil {
					return fmt.Errorf("serve %s: %w", mountPoint, err)
				}
			}

			logger.Info("Clean shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on, e.g. :9090")
	return cmd
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func seedCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Print the seed tree as a snapshot",
		Long:  "Print the seed tree as a JSON or YAML snapshot that --seed accepts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := snapshot.ParseFormat(format)
			if err != nil {
				return err
			}
			return snapshot.Encode(cmd.OutOrStdout(), a.tree.Snapshot(), f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		// Skip setup; printing the version needs no filesystem.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deskfs version %s\n", version)
		},
	}
}

func main() {
	rootCmd := buildRootCommand()
	err := rootCmd.Execute()
	logger.Sync()

	if err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
