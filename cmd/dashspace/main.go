// Command dashspace resolves windows and moves them between Spaces.
package main

import (
	"os"

	"github.com/1broseidon/dashspace/internal/cli"
	errs "github.com/1broseidon/dashspace/internal/errors"
)

func main() {
	err := cli.Execute(os.Stdout, os.Stderr)
	if err != nil {
		errs.Print(os.Stderr, err)
		os.Exit(errs.ExitCode(err))
	}
}
