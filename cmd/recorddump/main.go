// Program recorddump frame-parses a byte stream against a small
// built-in schema and prints the decoded records, to show how the
// binproto package can be wired up end to end.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
