package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/codemarks/internal/ci"
	"github.com/starford/codemarks/internal/clean"
	"github.com/starford/codemarks/internal/config"
	"github.com/starford/codemarks/internal/list"
	"github.com/starford/codemarks/internal/mark"
	"github.com/starford/codemarks/internal/scan"
	"github.com/starford/codemarks/internal/store"
	"github.com/starford/codemarks/internal/watch"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:  "codemarks",
		Usage: "Scan and track inline code annotations (TODO, FIXME, HACK)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "ephemeral",
				Usage:   "Run without reading or writing any persisted state",
				Sources: cli.EnvVars("CODEMARKS_EPHEMERAL"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			versionCommand(),
			scanCommand(),
			listCommand(),
			configCommand(),
			ciCommand(),
			watchCommand(),
			cleanCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newProviders wires the store and config providers, honoring ephemeral
// mode. In normal mode the per-user directory and default files are
// created on first run.
func newProviders(cmd *cli.Command) (store.Provider, config.Provider, error) {
	if cmd.Bool("ephemeral") {
		return store.NewEphemeral(), config.NewMemory(), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, err
	}
	cfgProv, err := config.NewFS(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, nil, err
	}
	storeProv, err := store.NewFS(filepath.Join(dir, store.FileName))
	if err != nil {
		return nil, nil, err
	}
	return storeProv, cfgProv, nil
}

// newMatcher validates the stored configuration and compiles its pattern.
func newMatcher(cfgProv config.Provider) (*mark.Matcher, error) {
	cfg := cfgProv.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return mark.NewMatcher(cfg.AnnotationPattern)
}

func directoryFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "directory",
		Aliases: []string{"d"},
		Usage:   "Directory to scan",
		Value:   ".",
	}
}

func ignoreFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "ignore",
		Aliases: []string{"i"},
		Usage:   "Ignore pattern (repeatable)",
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show the version",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf("codemarks version %s\n", version)
			return nil
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan a directory for code annotations and update the projects database",
		Flags: []cli.Flag{directoryFlag(), ignoreFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)
			storeProv, cfgProv, err := newProviders(cmd)
			if err != nil {
				return err
			}
			matcher, err := newMatcher(cfgProv)
			if err != nil {
				return err
			}
			count, err := scan.Scan(cmd.String("directory"), matcher, storeProv, scan.Options{
				Ignore: cmd.StringSlice("ignore"),
				Logger: logger,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Found %d unresolved code annotations across all projects\n", count)
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all code annotations from the projects database",
		Action: func(_ context.Context, cmd *cli.Command) error {
			storeProv, _, err := newProviders(cmd)
			if err != nil {
				return err
			}
			if storeProv.Ephemeral() {
				fmt.Println("No code annotations available (ephemeral mode).")
				return nil
			}
			s, err := storeProv.Load()
			if err != nil {
				return err
			}
			list.Render(os.Stdout, s)
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the global configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current annotation pattern and file locations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					storeProv, cfgProv, err := newProviders(cmd)
					if err != nil {
						return err
					}
					cfg := cfgProv.Load()
					fmt.Println("Global code annotation pattern:")
					fmt.Println(cfg.AnnotationPattern)
					fmt.Printf("\nConfig file location: %s\n", cfgProv.Path())
					fmt.Printf("Projects file location: %s\n", storeProv.Path())
					return nil
				},
			},
			{
				Name:      "set-pattern",
				Usage:     "Set the annotation pattern",
				ArgsUsage: "<pattern>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					pattern := cmd.Args().First()
					if pattern == "" {
						return fmt.Errorf("config: a pattern argument is required")
					}
					_, cfgProv, err := newProviders(cmd)
					if err != nil {
						return err
					}
					cfg := &config.Config{AnnotationPattern: pattern}
					// Reject before saving so a bad pattern never
					// displaces the stored one.
					if err := cfg.Validate(); err != nil {
						return err
					}
					if err := cfgProv.Save(cfg); err != nil {
						return err
					}
					fmt.Printf("Global code annotation pattern updated to: %s\n", pattern)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Reset the annotation pattern to the default",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, cfgProv, err := newProviders(cmd)
					if err != nil {
						return err
					}
					cfg := config.Default()
					if err := cfgProv.Save(cfg); err != nil {
						return err
					}
					fmt.Printf("Global code annotation pattern reset to default: %s\n", cfg.AnnotationPattern)
					return nil
				},
			},
		},
	}
}

func ciCommand() *cli.Command {
	return &cli.Command{
		Name:  "ci",
		Usage: "Scan and fail (exit 1) when any annotation matches, for CI gating",
		Flags: []cli.Flag{
			directoryFlag(),
			ignoreFlag(),
			&cli.StringFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Usage:   "Annotation pattern override (defaults to the compiled-in pattern)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)
			pattern := cmd.String("pattern")
			if pattern == "" {
				pattern = mark.DefaultPattern
			}
			matcher, err := mark.NewMatcher(pattern)
			if err != nil {
				return err
			}
			found, err := ci.Run(cmd.String("directory"), matcher, cmd.StringSlice("ignore"), os.Stdout, logger)
			if err != nil {
				return err
			}
			if found > 0 {
				fmt.Printf("Found %d codemarks matching pattern.\n", found)
				return cli.Exit("", 1)
			}
			fmt.Println("No codemarks found matching pattern.")
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch a directory and update annotations on file changes",
		Flags: []cli.Flag{
			directoryFlag(),
			ignoreFlag(),
			&cli.IntFlag{
				Name:        "debounce",
				Usage:       "Debounce interval in milliseconds",
				DefaultText: "500, or the workspace config's debounce_ms",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(cmd)
			storeProv, cfgProv, err := newProviders(cmd)
			if err != nil {
				return err
			}
			matcher, err := newMatcher(cfgProv)
			if err != nil {
				return err
			}

			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			g, gCtx := errgroup.WithContext(watchCtx)

			g.Go(func() error {
				return watch.Run(gCtx, cmd.String("directory"), matcher, storeProv, watch.Options{
					Debounce: time.Duration(cmd.Int("debounce")) * time.Millisecond,
					Ignore:   cmd.StringSlice("ignore"),
					Logger:   logger,
				})
			})

			g.Go(func() error {
				quit := make(chan os.Signal, 1)
				signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(quit)

				select {
				case sig := <-quit:
					logger.Info("watch: received shutdown signal", slog.String("signal", sig.String()))
					cancel()
				case <-gCtx.Done():
				}
				return nil
			})

			return g.Wait()
		},
	}
}

func cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove resolved annotations from the projects database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be removed without saving",
			},
			&cli.StringFlag{
				Name:  "project",
				Usage: "Only clean the named project",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			storeProv, _, err := newProviders(cmd)
			if err != nil {
				return err
			}
			dryRun := cmd.Bool("dry-run")
			res, err := clean.Clean(storeProv, cmd.String("project"), dryRun)
			if err != nil {
				return err
			}

			if res.Total == 0 {
				fmt.Println("No resolved annotations found to clean")
				return nil
			}
			if dryRun {
				for project, n := range res.Removed {
					fmt.Printf("Would remove %d resolved annotations from project '%s'\n", n, project)
				}
				for _, project := range res.Dropped {
					fmt.Printf("Would remove project '%s' (all annotations are resolved)\n", project)
				}
				fmt.Printf("\nDry run: %d resolved annotations across %d projects; run without --dry-run to remove them\n",
					res.Total, len(res.Removed))
				return nil
			}
			fmt.Printf("Removed %d resolved annotations from %d projects\n", res.Total, len(res.Removed))
			for project, n := range res.Removed {
				fmt.Printf("  - %s: %d resolved annotations removed\n", project, n)
			}
			for _, project := range res.Dropped {
				fmt.Printf("Removed project '%s' (all annotations were resolved)\n", project)
			}
			return nil
		},
	}
}
