// Package commands is the command line interface of the app showcase.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ubuntu/app-showcase/internal/about"
	"github.com/ubuntu/app-showcase/internal/cli"
	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/fetch"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"github.com/ubuntu/app-showcase/internal/tips"
	"golang.org/x/text/language"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig

	// fetcher replaces the HTTP fetcher when set.
	fetcher fetch.Fetcher
	session *session

	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{}
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool

	App      about.Info
	Products []tips.Product
	Showcase showcaseConfig
	Locale   language.Tag

	StateFile string
	IconDir   string

	Metrics     bool
	MetricsHost string
	MetricsPort int
}

// showcaseConfig tunes the remote catalog refreshes.
type showcaseConfig struct {
	Development     bool
	StalenessWindow time.Duration
	Timeout         time.Duration
}

// New creates a new App instance with default values.
func New() (*App, error) {
	a := App{ready: make(chan struct{})}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.cmd = &cobra.Command{
		Use:   constants.CmdName,
		Short: "Display the about screen of an app and its showcase of related apps",
		Long: `Display the about screen of an app: its identity, its rating, feedback and privacy links,
its tip buttons and a showcase of related apps fed by a remote catalog cached locally.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := cli.Unmarshal(a.viper, &a.config); err != nil {
				return err
			}
			slog.Debug("Got app config", "config", a.config)

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Update logging after loading config if necessary
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.config.Metrics || a.session == nil {
				return nil
			}
			return metrics.WriteText(cmd.OutOrStdout(), a.session.registry)
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	if err := installRootCmd(&a); err != nil {
		return nil, err
	}
	cli.InstallConfigFlag(a.cmd)

	a.installShow()
	a.installRefresh()
	a.installIcons()
	if err := a.installWatch(); err != nil {
		return nil, err
	}
	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) error {
	cmd := app.cmd
	flags := cmd.PersistentFlags()

	flags.CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	flags.BoolVar(&app.config.JSONLogs, "json-logs", false, "write logs in JSON format")

	flags.String("store-id", "", "app store id of the app, required")
	flags.String("app-name", "", "name of the app")
	flags.String("showcase-url", "", "URL of the remote showcase catalog")
	flags.String("locale", "", "locale of the descriptions, defaults to the environment one")

	flags.Bool("dev", false, "consider the cached catalog always stale")
	flags.Duration("staleness-window", constants.DefaultStalenessWindow, "age after which the cached catalog is refreshed")
	flags.Duration("timeout", constants.DefaultResponseTimeout, "time to wait for a remote response")

	flags.String("state-file", filepath.Join(constants.GetDefaultCachePath(), constants.StateFileName), "file holding the cached catalog")
	flags.String("icon-dir", constants.GetDefaultIconCachePath(), "directory holding the downloaded icons")
	flags.Bool("metrics", false, "print the collected metrics on exit")

	if err := bindFlags(app.viper, flags, map[string]string{
		"verbosity":                "verbose",
		"jsonlogs":                 "json-logs",
		"app.appstoreid":           "store-id",
		"app.appname":              "app-name",
		"app.showcaseurl":          "showcase-url",
		"locale":                   "locale",
		"showcase.development":     "dev",
		"showcase.stalenesswindow": "staleness-window",
		"showcase.timeout":         "timeout",
		"statefile":                "state-file",
		"icondir":                  "icon-dir",
		"metrics":                  "metrics",
	}); err != nil {
		return err
	}

	if err := cmd.MarkPersistentFlagFilename("state-file"); err != nil {
		// This should never happen.
		panic(fmt.Sprintf("failed to mark state-file flag as filename: %v", err))
	}
	if err := cmd.MarkPersistentFlagDirname("icon-dir"); err != nil {
		// This should never happen.
		panic(fmt.Sprintf("failed to mark icon-dir flag as dirname: %v", err))
	}
	return nil
}

// bindFlags binds each configuration key to the flag of flags named after it.
func bindFlags(vip *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := vip.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("could not bind flag %q: %v", name, err)
		}
	}
	return nil
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// Quit cancels the running command.
func (a *App) Quit() {
	a.cancel()
}

// WaitReady waits for the watch command to be watching the state file.
func (a *App) WaitReady() {
	<-a.ready
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// locale returns the configured locale, falling back to the environment one, then to English.
func (a App) locale() string {
	if a.config.Locale != language.Und {
		return a.config.Locale.String()
	}
	if l := cli.LocaleFromEnv(); l != language.Und {
		return l.String()
	}
	return language.English.String()
}
