// Command elevate is the operator CLI for the product catalog.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		a.report(err)
		os.Exit(1)
	}
}
