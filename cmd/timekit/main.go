package main

import (
	"os"

	"github.com/timekit-io/timekit/cmd/timekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
