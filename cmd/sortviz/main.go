// Command sortviz runs, records, and replays instrumented sorting algorithms.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/sortviz/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

func run() error {
	cmd := cli.NewRootCommand()
	return cmd.ExecuteContext(context.Background())
}
