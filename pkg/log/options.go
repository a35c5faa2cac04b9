package log

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Options contains configuration settings for the logger.
type Options struct {
	// Name is an optional name for the logger, added as a field to each entry.
	Name string `json:"name,omitempty" mapstructure:"name"`

	// Level is the minimum log level to output. Can be 'debug', 'info', 'warn', 'error'.
	Level string `json:"level,omitempty" mapstructure:"level"`

	// Format specifies the log output format. Can be 'json' or 'console'.
	Format string `json:"format,omitempty" mapstructure:"format"`

	// EnableColor enables colorized output for console format.
	EnableColor bool `json:"enable-color,omitempty" mapstructure:"enable-color"`

	// DisableCaller stops annotating logs with the calling function's file name and line number.
	DisableCaller bool `json:"disable-caller,omitempty" mapstructure:"disable-caller"`

	// CallerSkip increases the number of callers skipped by caller annotation.
	// Useful for building wrappers around the logger.
	CallerSkip int `json:"caller-skip,omitempty" mapstructure:"caller-skip"`

	// OutputPaths is a list of paths to write logs to. Use "stdout" or "stderr" for console output.
	OutputPaths []string `json:"output-paths,omitempty" mapstructure:"output-paths"`

	// RotateFile, when set, writes logs to this file with size-based rotation
	// in addition to OutputPaths.
	RotateFile string `json:"rotate-file,omitempty" mapstructure:"rotate-file"`

	// RotateMaxSizeMB is the maximum size in megabytes of the rotated log file
	// before it gets rotated.
	RotateMaxSizeMB int `json:"rotate-max-size-mb,omitempty" mapstructure:"rotate-max-size-mb"`

	// RotateMaxBackups is the maximum number of old rotated log files to retain.
	RotateMaxBackups int `json:"rotate-max-backups,omitempty" mapstructure:"rotate-max-backups"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Level:            "info",
		Format:           "console",
		EnableColor:      true,
		CallerSkip:       2, // Default to 2, which is correct for direct usage of the log package.
		OutputPaths:      []string{"stdout"},
		RotateMaxSizeMB:  100,
		RotateMaxBackups: 3,
	}
}

// Validate validates all the required options.
func (o *Options) Validate() []error {
	var errs []error

	switch o.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q, must be 'json' or 'console'", o.Format))
	}

	return errs
}

// AddFlags binds command-line flags to the Options fields.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Name, "log.name", o.Name, "An optional name for the logger.")
	fs.StringVar(&o.Format, "log.format", o.Format, "The log output format ('json' or 'console').")
	fs.BoolVar(&o.EnableColor, "log.enable-color", o.EnableColor, "Enable colorized output for the console format.")
	fs.IntVar(&o.CallerSkip, "log.caller-skip", o.CallerSkip, "The number of caller frames to skip.")

	usage := "The minimum log level to output (e.g., 'debug', 'info', 'warn', 'error')."
	fs.StringVar(&o.Level, "log.level", o.Level, usage)

	usage = "Disable the caller field in logs (file and line number)."
	fs.BoolVar(&o.DisableCaller, "log.disable-caller", o.DisableCaller, usage)

	usage = "A list of log output paths (e.g., 'stdout', '/var/log/app.log')."
	fs.StringSliceVar(&o.OutputPaths, "log.output-paths", o.OutputPaths, usage)

	fs.StringVar(&o.RotateFile, "log.rotate-file", o.RotateFile, "Write logs to this file with size-based rotation.")
	fs.IntVar(&o.RotateMaxSizeMB, "log.rotate-max-size-mb", o.RotateMaxSizeMB, "Maximum size in MB before the log file is rotated.")
	fs.IntVar(&o.RotateMaxBackups, "log.rotate-max-backups", o.RotateMaxBackups, "Maximum number of rotated log files to retain.")
}
