package main

import (
	"os"

	"github.com/leftmike/sqlexpr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
