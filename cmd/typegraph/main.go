// Command typegraph compiles YAML type declarations into JSON Schema
// documents and checks declaration files for structural problems.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
