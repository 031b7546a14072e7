package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/swix/internal/app"
	"github.com/vk/swix/internal/cli"
	"github.com/vk/swix/internal/diag"
)

// main is the entrypoint for the swix compiler.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	swixApp := app.NewApp(outW, appConfig)
	_, err = swixApp.Run(ctx)
	return err
}

// printError renders source diagnostics the way HCL tools do, and anything
// else as a plain line.
func printError(w io.Writer, err error) {
	de, ok := diag.As(err)
	if !ok {
		fmt.Fprintln(w, err)
		return
	}
	dw := hcl.NewDiagnosticTextWriter(w, nil, 78, false)
	if werr := dw.WriteDiagnostic(de.Diagnostic()); werr != nil {
		fmt.Fprintln(w, err)
	}
}
