// Command charsheet builds and edits Exalted character sheets.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/charsheet/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
