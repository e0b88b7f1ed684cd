// Command securefox is the command-line client for securefoxd.
package main

import (
	"fmt"
	"os"

	"github.com/securefoxd/securefox/clierror"
	"github.com/securefoxd/securefox/cmd/securefox/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, clierror.Message(err))
		os.Exit(clierror.DefaultErrorExitCode)
	}
}
