// Command alkitab resolves book references and reads chapters from the
// content source without running the HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
