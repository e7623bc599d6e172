package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/blueprint/internal/app"
	"github.com/specialistvlad/blueprint/internal/cli"
)

// main is the entrypoint for the blueprint application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on errW and maps it to the process exit code.
func exitCode(err error, errW io.Writer) int {
	if err == nil {
		return cli.ExitOK
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(errW, exitErr.Message)
		return exitErr.Code
	}
	fmt.Fprintln(errW, err)
	return cli.ExitFindings
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	blueprintApp := app.NewApp(ctx, outW, errW, appConfig)
	defer blueprintApp.Close()

	if err := blueprintApp.Run(ctx); err != nil {
		if errors.Is(err, app.ErrFindings) {
			return &cli.ExitError{Code: cli.ExitFindings, Message: err.Error()}
		}
		return err
	}
	return nil
}
