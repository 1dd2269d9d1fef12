// Command varstate manages scoped workflow variables in a SQLite database.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/varstate/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
