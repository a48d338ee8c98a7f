package main

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/deez/internal/version"
	"github.com/arthur-debert/deez/pkg/backup"
	"github.com/arthur-debert/deez/pkg/command"
	"github.com/arthur-debert/deez/pkg/config"
	"github.com/arthur-debert/deez/pkg/deploy"
	"github.com/arthur-debert/deez/pkg/deps"
	"github.com/arthur-debert/deez/pkg/errors"
	"github.com/arthur-debert/deez/pkg/fetch"
	"github.com/arthur-debert/deez/pkg/filesystem"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/managers"
	"github.com/arthur-debert/deez/pkg/orchestrator"
	"github.com/arthur-debert/deez/pkg/paths"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	verbosity int
	cfgFile   string
	install   bool

	rootCmd = &cobra.Command{
		Use:   "deez",
		Short: "Deploy declared dotfiles into your home directory",
		Long: `deez deploys a declared set of configuration files from a source
tree into locations under your home directory. Each dot group picks a
conflict policy (preserve, overwrite or sync), existing targets are
backed up before every write, and deployment is gated on package
manager resolved dependencies.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "deez.toml", "Path to the deez config file")
	rootCmd.Flags().BoolVar(&install, "install", false, "Install missing dependencies before deploying")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("deez %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
	},
}

func run(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	fsys := filesystem.NewOS()
	runner := command.New(command.Options{Logger: logging.GetLogger("command")})

	// Resolve the source root: the fetched clone when a remote source
	// is configured, the config file's directory otherwise.
	sourceRoot := cfg.Root
	if cfg.Git != nil {
		fetcher := fetch.New(fetch.Options{
			Runner:    runner,
			CloneRoot: paths.CloneRoot(),
			Logger:    logging.GetLogger("fetch"),
		})
		sourceRoot, err = fetcher.Ensure(ctx, cfg.Git)
		if err != nil {
			return err
		}
	}
	config.AnchorSources(cfg, sourceRoot)

	registry := managers.Default()
	resolver := deps.New(deps.Options{
		Registry: registry,
		Runner:   runner,
		Logger:   logging.GetLogger("deps"),
	})

	selected, err := resolver.ResolveManagers(cfg.PackageManagers, registry.Available(nil))
	if err != nil {
		return err
	}
	log.Info().Strs("managers", selected).Msg("Using package managers")

	resolved := resolver.Filter(selected, deps.MergeDependencies(cfg.Dependencies, cfg.Groups))

	if install {
		if err := resolver.InstallMissing(ctx, resolved); err != nil {
			return err
		}
	}

	if missing := resolver.Check(ctx, resolved); len(missing) > 0 {
		return errors.Newf(errors.ErrDepsMissing, "unresolved dependencies: %v", missing)
	}

	session := backup.NewSession(paths.BackupSessionDir(time.Now()), fsys)
	engine := deploy.New(deploy.Options{
		FS:      fsys,
		Backups: session,
		Logger:  logging.GetLogger("deploy"),
	})

	o := orchestrator.New(orchestrator.Options{
		Config:   cfg,
		Engine:   engine,
		Resolver: resolver,
		Selected: selected,
		Runner:   runner,
		Policy:   command.Interactive{},
		Logger:   logging.GetLogger("orchestrator"),
	})

	return o.Run(ctx)
}
