// Command xpand is a text expander.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/xpand/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xpand:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
