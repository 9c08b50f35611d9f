// Command listbind runs binding scenarios, validates binding configs and
// inspects binder journals.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/listbind/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
