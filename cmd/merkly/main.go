// Command merkly computes Merkle roots and inclusion proofs from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "merkly:", err)
		os.Exit(1)
	}
}
