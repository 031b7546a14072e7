package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/swix/internal/app"
	"github.com/vk/swix/internal/config"
	"github.com/vk/swix/internal/identity"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("swix", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
swix - compiles SWIX installer descriptions into WiX fragments.

Usage:
  swix [options] [SOURCE]

Arguments:
  SOURCE
    Path to a .swr source file. The fragment is written next to it with a
    .wxs extension, and stable identifiers are kept in SOURCE.ids.

Options:
`)
		flagSet.PrintDefaults()
	}

	var vars, varFiles stringList
	sourceFlag := flagSet.String("source", "", "Path to the source file.")
	sFlag := flagSet.String("s", "", "Path to the source file (shorthand).")
	outFlag := flagSet.String("out", "", "Path of the generated fragment. Defaults to SOURCE with a .wxs extension.")
	oFlag := flagSet.String("o", "", "Path of the generated fragment (shorthand).")
	identityFlag := flagSet.String("identity", app.DefaultIdentityMode,
		fmt.Sprintf("Identity store mode. Options: %s.", strings.Join(identity.ModeNames(), ", ")))
	flagSet.Var(&vars, "var", "Define a variable as NAME=VALUE. May be repeated.")
	flagSet.Var(&varFiles, "var-file", "HCL variable file, or a directory of .hcl files. May be repeated.")
	envFileFlag := flagSet.String("env-file", "", "Dotenv file consulted before the process environment.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *sourceFlag != "" {
		path = *sourceFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}
	slog.Debug("Source path determined.", "path", path)

	if path == "" {
		slog.Debug("No source path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = *oFlag
	}

	var variables map[string]string
	for _, v := range vars {
		name, value, err := config.ParseAssignment(v)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		if variables == nil {
			variables = make(map[string]string)
		}
		variables[name] = value
	}

	cfg, err := app.NewConfig(app.Config{
		SourcePath:   path,
		OutputPath:   outPath,
		IdentityMode: *identityFlag,
		Variables:    variables,
		VarFiles:     varFiles,
		EnvFile:      *envFileFlag,
		LogFormat:    strings.ToLower(*logFormatFlag),
		LogLevel:     strings.ToLower(*logLevelFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
