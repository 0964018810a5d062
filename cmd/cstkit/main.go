package main

import (
	"os"

	"github.com/msto63/cstkit/cmd/cstkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
