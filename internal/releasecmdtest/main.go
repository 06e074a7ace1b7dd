// releasecmdtest is a small internal harness for transcript tests.
//
// It provisions a disposable project (a work tree on develop plus a bare
// origin) under the system temp dir, installs a hermetic `gh` stub, then
// runs an arbitrary command inside the work tree and returns its exit code.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	tool, err := newToolFromExecutable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(tool.runCLI(context.Background(), os.Args[1:]))
}
