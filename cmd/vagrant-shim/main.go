package main

import (
	"fmt"
	"os"

	"github.com/hbjs97/vagrant-shim/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "힌트: %s\n", hint)
		}
		os.Exit(int(cli.MapExitCode(err)))
	}
}
