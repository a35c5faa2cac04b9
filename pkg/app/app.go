// Package app provides the shared command-line scaffolding for all FleetGlass
// binaries: flag registration, config file loading with hot reload, and
// logger initialization.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/fleetglass/fleetglass/pkg/log"
)

// Options is implemented by each command's aggregated options struct.
type Options interface {
	// AddFlags registers all option flags on the command's flag set.
	AddFlags(fs *pflag.FlagSet)

	// Complete fills in derived or defaulted values after flags are parsed.
	Complete() error

	// Validate checks the final option values.
	Validate() error

	// LogOptions exposes the logging options so the app can initialize the
	// global logger before Run is invoked.
	LogOptions() *log.Options
}

// RunFunc is the command's entry point, invoked after options are complete
// and validated and the logger is initialized.
type RunFunc func() error

// App wraps a cobra command with the FleetGlass configuration conventions.
type App struct {
	name        string
	short       string
	description string
	opts        Options
	run         RunFunc

	cmd        *cobra.Command
	configFile string
}

// Option configures an App.
type Option func(*App)

// WithDescription sets the long command description.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the command's options struct.
func WithOptions(opts Options) Option {
	return func(a *App) { a.opts = opts }
}

// WithRunFunc sets the command's entry point.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.run = run }
}

// NewApp assembles a command-line application following the project
// conventions: flags bound to viper, optional --config YAML file with
// hot reload, environment overrides with the FGLASS_ prefix.
func NewApp(name, short string, options ...Option) *App {
	a := &App{
		name:  name,
		short: short,
	}
	for _, o := range options {
		o(a)
	}

	cmd := &cobra.Command{
		Use:           name,
		Short:         short,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCommand()
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&a.configFile, "config", "c", "", "Path to a YAML configuration file.")
	if a.opts != nil {
		a.opts.AddFlags(fs)
	}

	a.cmd = cmd
	return a
}

// Command exposes the underlying cobra command, for adding subcommands.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run parses flags and executes the application.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.name, err)
		os.Exit(1)
	}
}

func (a *App) runCommand() error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	if a.opts != nil {
		if err := a.opts.Complete(); err != nil {
			return fmt.Errorf("failed to complete options: %w", err)
		}
		if err := a.opts.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log.Init(a.opts.LogOptions())
	} else {
		log.Init(nil)
	}

	log.Info("Starting application", "name", a.name)

	if a.run != nil {
		return a.run()
	}
	return nil
}

// loadConfig wires viper: flag values become defaults, the optional config
// file and FGLASS_ environment variables override them, and the merged
// result is written back into the options struct.
func (a *App) loadConfig() error {
	v := viper.New()

	if err := v.BindPFlags(a.cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvPrefix("FGLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if a.configFile != "" {
		v.SetConfigFile(a.configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", a.configFile, err)
		}

		// Hot reload only logs the change; options are read once at startup.
		// Components that support live tuning re-read on the callback.
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("Config file changed", "file", e.Name, "op", e.Op.String())
		})
		v.WatchConfig()
	}

	// Push merged values back into the flag set so the options structs,
	// which were populated by pflag, see file/env overrides too.
	var errs error
	a.cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			val := flagValue(v.Get(f.Name))
			if err := a.cmd.Flags().Set(f.Name, val); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("apply config key %s: %w", f.Name, err))
			}
		}
	})

	return errs
}

// flagValue renders a viper value in the form pflag's Set accepts.
// Slices become comma-separated lists.
func flagValue(val any) string {
	if items, ok := val.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(val)
}

// AggregateErrors merges a list of validation errors into a single error,
// or returns nil if the list is empty.
func AggregateErrors(errs []error) error {
	return multierr.Combine(errs...)
}

// SetupSignalContext installs SIGINT/SIGTERM handlers and returns a context
// cancelled on the first signal. A second signal exits immediately.
func SetupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}
