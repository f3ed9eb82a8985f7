package main

import (
	"fmt"
	"os"
)

// main - runs the CLI and turns startup panics (config loading) into a clean exit.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	Execute()
}
