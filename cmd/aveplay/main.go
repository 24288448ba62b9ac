// Command aveplay inspects, plays and snapshots media files through the
// aveplay player and its FFmpeg backend.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command line and reports any error on stderr, since the
// root command keeps cobra from printing it.
func run(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "aveplay:", err)
		return 1
	}
	return 0
}
