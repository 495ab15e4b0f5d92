// Command fetch issues HTTP calls through a fully configured fetchkit
// pipeline: request ids, a User-Agent, logging, optional tracing and
// metrics, and retries.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fetch:", err)
		os.Exit(1)
	}
}
