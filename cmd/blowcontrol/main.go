package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// errReported marks failures whose output was already written.
var errReported = errors.New("command failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := newApp().execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		msg := describeError(err)
		if ok, _ := encode(stdout, a.output, outcome{Error: msg}); !ok {
			fmt.Fprintf(stderr, "Error: %s\n", msg)
		}
	}
	return 1
}
