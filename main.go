// main is the entrypoint for the civiclens CLI.
package main

import (
	"fmt"
	"os"

	"github.com/civiclens/civiclens/cmd"
	"github.com/civiclens/civiclens/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	code := run()
	iocache.CloseCaching()
	os.Exit(code)
}

// run executes the root command and reports its exit code.
func run() int {
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
