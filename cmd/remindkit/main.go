package main

import (
	"os"

	"github.com/remindkit/remindkit/cmd/remindkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
